package domain

import "time"

// DashboardStats: агрегированная view-model дашборда, ответ /api/customer/dashboard/stats.
type DashboardStats struct {
	Packages       PackageStats   `json:"packages"`
	Invoices       InvoiceStats   `json:"invoices"`
	Tickets        TicketStats    `json:"tickets"`
	CyberHealth    CyberHealth    `json:"cyberHealth"`
	RecentActivity RecentActivity `json:"recentActivity"`
}

type PackageStats struct {
	Active    int `json:"active"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type InvoiceStats struct {
	TotalAmount  float64 `json:"totalAmount"`
	PaidAmount   float64 `json:"paidAmount"`
	UnpaidAmount float64 `json:"unpaidAmount"`
	Count        int     `json:"count"`
}

type TicketStats struct {
	Open     int `json:"open"`
	Resolved int `json:"resolved"`
}

type CyberHealth struct {
	Score    float64    `json:"score"` // 0..100
	Status   string     `json:"status,omitempty"`
	LastScan *time.Time `json:"lastScan,omitempty"`
}

type RecentActivity struct {
	Packages []Package `json:"packages"`
	Messages []Message `json:"messages"`
}

// StatsEnvelope: обертка ответа сервера.
type StatsEnvelope struct {
	Stats *DashboardStats `json:"stats"`
}

// Normalize пересчитывает total из счетчиков по статусам и возвращает true,
// если значение сервера не совпало.
func (p *PackageStats) Normalize() bool {
	sum := p.Active + p.Upcoming + p.Completed
	if p.Total == sum {
		return false
	}
	p.Total = sum
	return true
}

// Normalize приводит статистику к инвариантам клиента.
// Возвращает true, если packages.total пришлось пересчитать.
func (s *DashboardStats) Normalize() bool {
	if s.CyberHealth.Score < 0 {
		s.CyberHealth.Score = 0
	}
	if s.CyberHealth.Score > 100 {
		s.CyberHealth.Score = 100
	}
	if s.RecentActivity.Packages == nil {
		s.RecentActivity.Packages = []Package{}
	}
	if s.RecentActivity.Messages == nil {
		s.RecentActivity.Messages = []Message{}
	}
	return s.Packages.Normalize()
}

// Clone возвращает копию, не разделяющую слайсы и указатели с оригиналом.
func (s *DashboardStats) Clone() *DashboardStats {
	if s == nil {
		return nil
	}
	c := *s
	if s.CyberHealth.LastScan != nil {
		t := *s.CyberHealth.LastScan
		c.CyberHealth.LastScan = &t
	}
	if s.RecentActivity.Packages != nil {
		c.RecentActivity.Packages = make([]Package, len(s.RecentActivity.Packages))
		copy(c.RecentActivity.Packages, s.RecentActivity.Packages)
	}
	if s.RecentActivity.Messages != nil {
		c.RecentActivity.Messages = make([]Message, len(s.RecentActivity.Messages))
		copy(c.RecentActivity.Messages, s.RecentActivity.Messages)
	}
	return &c
}
