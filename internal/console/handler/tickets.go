package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/tickets"
)

type TicketBoard interface {
	Fetch(ctx context.Context, f domain.TicketFilter)
	Create(ctx context.Context, req domain.NewTicketRequest) (*domain.Ticket, error)
	Respond(ctx context.Context, id string, req domain.TicketResponseRequest) (*domain.Ticket, error)
	State() tickets.State
}

type TicketsHandler struct {
	board TicketBoard
}

func NewTicketsHandler(b TicketBoard) *TicketsHandler {
	return &TicketsHandler{board: b}
}

// List: GET /api/v1/tickets?status=&priority=
func (h *TicketsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.board.Fetch(r.Context(), domain.TicketFilter{
		Status:   domain.TicketStatus(q.Get("status")),
		Priority: domain.TicketPriority(q.Get("priority")),
	})
	writeJSON(w, http.StatusOK, h.board.State())
}

// Create: POST /api/v1/tickets
func (h *TicketsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.board.Create(r.Context(), req)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.TicketEnvelope{Ticket: t})
}

// Respond: PUT /api/v1/tickets/{id}
func (h *TicketsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.TicketResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.board.Respond(r.Context(), id, req)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.TicketEnvelope{Ticket: t})
}
