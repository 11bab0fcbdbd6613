package application

import (
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

// StageResult summarizes one asset class's stage within a cycle.
type StageResult struct {
	Class   domain.AssetClass   `json:"class"`
	Status  domain.UpdateStatus `json:"status"`
	Added   int                 `json:"added"`
	Skipped int                 `json:"skipped,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// CycleReport is the structured summary returned to manual triggers. Partial
// failure is normal: the report carries a result per attempted stage.
type CycleReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stages     []StageResult `json:"stages"`
}

// Succeeded reports whether every stage completed without error.
func (r CycleReport) Succeeded() bool {
	for _, s := range r.Stages {
		if s.Status != domain.UpdateStatusSuccess {
			return false
		}
	}
	return true
}
