package dashboard

import (
	"time"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
)

// CycleReport: итог одного цикла для журнала.
type CycleReport struct {
	UserID        string
	Role          domain.Role
	Trigger       Trigger
	StartedAt     time.Time
	Duration      time.Duration
	Err           error
	TotalMismatch bool
}

// Outcome: success, request_failed или request_aborted.
func (r CycleReport) Outcome() string {
	if r.Err == nil {
		return "success"
	}
	return string(domain.Classify(r.Err))
}
