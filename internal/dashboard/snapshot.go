package dashboard

import (
	"time"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
)

// Snapshot: текущее состояние агрегатора. Копия, ее можно свободно читать и менять.
type Snapshot struct {
	Stats     *domain.DashboardStats `json:"stats"`
	Loading   bool                   `json:"loading"`
	Error     string                 `json:"error,omitempty"`
	ErrorKind domain.ErrorKind       `json:"errorKind,omitempty"`
	User      *User                  `json:"user"`
	Company   *domain.Company        `json:"company"`
	UpdatedAt *time.Time             `json:"updatedAt,omitempty"`
}

// User: публичная проекция Identity (без токена сессии).
type User struct {
	ID          string      `json:"id"`
	Role        domain.Role `json:"role"`
	WorkEmail   string      `json:"workEmail,omitempty"`
	CompanyName string      `json:"companyName,omitempty"`
}

// Snapshot безопасен для вызова в любой момент из любой горутины.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Snapshot{
		Stats:     a.stats.Clone(),
		Loading:   a.loading,
		Error:     a.errMsg,
		ErrorKind: a.errKind,
		Company:   a.company.Clone(),
	}
	if a.user != nil {
		s.User = &User{
			ID:          a.user.ID(),
			Role:        a.user.Role(),
			WorkEmail:   a.user.WorkEmail(),
			CompanyName: a.user.CompanyName(),
		}
	}
	if !a.updatedAt.IsZero() && a.stats != nil {
		t := a.updatedAt
		s.UpdatedAt = &t
	}
	return s
}

// Identity возвращает загруженную identity или nil.
func (a *Aggregator) Identity() domain.Identity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}
