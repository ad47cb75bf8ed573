package journal

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/cybermarket-dashboard/internal/dashboard"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
)

// CycleEvent: запись журнала об одном цикле загрузки дашборда.
type CycleEvent struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	Trigger    string    `json:"trigger"`
	Outcome    string    `json:"outcome"` // success, request_failed, request_aborted
	Status     int       `json:"status"`  // HTTP-статус для request_failed, иначе 0
	Error      string    `json:"error"`
	DurationMs int64     `json:"duration_ms"`
	Mismatch   bool      `json:"total_mismatch"`
	StartedAt  time.Time `json:"started_at"`
}

// EventFromReport переводит отчет агрегатора в запись журнала.
func EventFromReport(r dashboard.CycleReport) CycleEvent {
	e := CycleEvent{
		ID:         uuid.NewString(),
		UserID:     r.UserID,
		Role:       string(r.Role),
		Trigger:    string(r.Trigger),
		Outcome:    r.Outcome(),
		DurationMs: r.Duration.Milliseconds(),
		Mismatch:   r.TotalMismatch,
		StartedAt:  r.StartedAt,
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
		var rf *domain.RequestFailedError
		if errors.As(r.Err, &rf) {
			e.Status = rf.Status
		}
	}
	return e
}
