package domain

import "time"

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// Ticket: обращение в поддержку.
type Ticket struct {
	ID          string           `json:"id"`
	Subject     string           `json:"subject"`
	Description string           `json:"description"`
	Category    string           `json:"category,omitempty"`
	Status      TicketStatus     `json:"status"`
	Priority    TicketPriority   `json:"priority"`
	Responses   []TicketResponse `json:"responses,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type TicketResponse struct {
	Message   string    `json:"message"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketFilter: параметры ?status=&priority= (пустые значения не передаются).
type TicketFilter struct {
	Status   TicketStatus
	Priority TicketPriority
}

type NewTicketRequest struct {
	Subject     string         `json:"subject" validate:"required"`
	Description string         `json:"description" validate:"required"`
	Category    string         `json:"category,omitempty"`
	Priority    TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// TicketResponseRequest: тело PUT /api/customer/support/tickets/:id (добавление ответа).
type TicketResponseRequest struct {
	Message string       `json:"message" validate:"required"`
	Status  TicketStatus `json:"status,omitempty" validate:"omitempty,oneof=open in_progress resolved closed"`
}

type TicketEnvelope struct {
	Ticket *Ticket `json:"ticket"`
}

type TicketsEnvelope struct {
	Tickets []Ticket `json:"tickets"`
}
