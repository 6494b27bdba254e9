package dto

type PlanRequest struct {
	DryRun bool `json:"dry_run"`
}

type PlanResponse struct {
	Routes            []RouteResponse `json:"routes"`
	UnassignedDropIDs []string        `json:"unassigned_drop_ids"`
	OptimizationScore float64         `json:"optimization_score"`
	TotalDrops        int             `json:"total_drops"`
	Persisted         bool            `json:"persisted"`
}

type CatalogReloadResponse struct {
	Entries  int    `json:"entries"`
	LoadedAt string `json:"loaded_at"`
}
