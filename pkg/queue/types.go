package queue

import (
	"time"

	"github.com/tafypz/ercot-rts/pkg/models"
)

// PriceBatch is published once per hub and collection run with the newly
// settled intervals.
type PriceBatch struct {
	RunID       string         `json:"run_id"`
	Hub         string         `json:"hub"`
	Prices      []models.Price `json:"prices"`
	SourceURL   string         `json:"source_url"`
	CollectedAt time.Time      `json:"collected_at"`
}

// CollectRunResult summarises one collection run.
type CollectRunResult struct {
	RunID      string    `json:"run_id"`
	Success    bool      `json:"success"`
	Hubs       int       `json:"hubs"`
	PricesNew  int       `json:"prices_new"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
