package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-planner-service/internal/adapters/notify"
	"route-planner-service/internal/domain"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// HandleAssignmentExpire lapses an offer that has not been answered in time.
// An offer that is still inside its window returns an error so the task retries.
func (h *Handlers) HandleAssignmentExpire(ctx context.Context, task *asynq.Task) error {
	var payload notify.PayloadAssignmentExpire
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", asynq.SkipRetry)
	}
	if h.Expirer == nil {
		return errors.New("assignment expire: expirer not configured")
	}

	a, err := h.Expirer.ExpireAssignment(ctx, payload.AssignmentID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		log.Warn().Str("assignment_id", payload.AssignmentID).Msg("assignment not found, dropping expiry task")
		return fmt.Errorf("assignment expire: %w: %w", err, asynq.SkipRetry)
	case err != nil:
		return fmt.Errorf("assignment expire: %w", err)
	}

	log.Info().
		Str("type", task.Type()).
		Str("assignment_id", a.ID).
		Str("outcome", string(a.Outcome)).
		Msg("processed assignment expiry")

	return nil
}
