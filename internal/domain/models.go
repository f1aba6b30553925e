package domain

import (
	"time"

	"github.com/user/inventory-service/internal/jsonvalue"
)

// Product is a normalized menu item. Every field is either a value copied
// verbatim from the upstream record or nil (encoded as null). Prices are
// never carried.
type Product struct {
	Name       *jsonvalue.Value `json:"name"`
	Brand      *jsonvalue.Value `json:"brand"`
	StrainType *jsonvalue.Value `json:"strainType"`
	Size       *jsonvalue.Value `json:"size"`
	TAC        *jsonvalue.Value `json:"tac"`
	THC        *jsonvalue.Value `json:"thc"`
	CBD        *jsonvalue.Value `json:"cbd"`
	Slug       *jsonvalue.Value `json:"slug"` // opaque token, never a store URL
}

// InventoryResult is the payload returned for a successful inventory request.
type InventoryResult struct {
	Source      string    `json:"source"`
	LastUpdated string    `json:"lastUpdated"`
	Count       int       `json:"count"`
	Inventory   []Product `json:"inventory"`
}

// Run statuses recorded in the run log.
const (
	RunCompleted   = "completed"
	RunFetchFailed = "fetch_failed"
	RunShapeError  = "shape_error"
	RunNoProducts  = "no_products"
)

// RunRecord describes one pipeline execution. It never holds inventory data.
type RunRecord struct {
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	Count      int       `json:"count"`
	FailReason string    `json:"fail_reason,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
}

// RunStatusResponse is the API response for the run status endpoint.
type RunStatusResponse struct {
	LastRun       *RunRecord `json:"last_run,omitempty"`
	FailureStreak int64      `json:"failure_streak"`
}
