package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-planner-service/internal/adapters/notify"
	"route-planner-service/internal/ports"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Message published on a driver's offers channel.
type OfferMessage struct {
	Type      string             `json:"type"`
	Data      ports.RouteOffered `json:"data"`
	Timestamp time.Time          `json:"timestamp"`
}

// HandleRouteOffered publishes the offer to the driver's Redis channel.
func (h *Handlers) HandleRouteOffered(ctx context.Context, task *asynq.Task) error {
	var ev ports.RouteOffered
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		return fmt.Errorf("unmarshal payload: %w", asynq.SkipRetry)
	}
	if ev.DriverID == "" {
		return fmt.Errorf("route offered: driver id is empty: %w", asynq.SkipRetry)
	}
	if h.Publisher == nil {
		return errors.New("route offered: publisher not configured")
	}

	msg, err := json.Marshal(OfferMessage{Type: "route_offered", Data: ev, Timestamp: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("route offered: marshal message: %w", asynq.SkipRetry)
	}

	channel := notify.OffersChannel(ev.DriverID)
	receivers, err := h.Publisher.Publish(ctx, channel, msg).Result()
	if err != nil {
		return fmt.Errorf("route offered: publish to %s: %w", channel, err)
	}

	log.Info().
		Str("type", task.Type()).
		Str("route_id", ev.RouteID).
		Str("driver_id", ev.DriverID).
		Int64("receivers", receivers).
		Msg("published route offer")

	return nil
}
