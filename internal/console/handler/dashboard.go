package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/cybermarket-dashboard/internal/dashboard"
)

// DashboardService: что хендлеру нужно от агрегатора.
type DashboardService interface {
	Snapshot() dashboard.Snapshot
	Refetch(ctx context.Context) bool
}

type DashboardHandler struct {
	service DashboardService
}

func NewDashboardHandler(s DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetSnapshot: GET /api/v1/dashboard
func (h *DashboardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

type refetchResponse struct {
	Triggered bool               `json:"triggered"`
	Snapshot  dashboard.Snapshot `json:"snapshot"`
}

// Refetch: POST /api/v1/dashboard/refetch. Цикл не зависит от соединения клиента:
// обрыв запроса не должен превращаться в request_aborted. Отменяет цикл только размонтирование.
func (h *DashboardHandler) Refetch(w http.ResponseWriter, r *http.Request) {
	triggered := h.service.Refetch(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusAccepted, refetchResponse{
		Triggered: triggered,
		Snapshot:  h.service.Snapshot(),
	})
}
