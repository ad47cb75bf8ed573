package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/packages"
)

type PackageList interface {
	Fetch(ctx context.Context, status domain.PackageStatus)
	Create(ctx context.Context, req domain.NewPackageRequest) (*domain.Package, error)
	State() packages.State
}

type PackagesHandler struct {
	list PackageList
}

func NewPackagesHandler(l PackageList) *PackagesHandler {
	return &PackagesHandler{list: l}
}

// List: GET /api/v1/packages?status=. Ошибка чтения приходит в поле error, статус 200.
func (h *PackagesHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.PackageStatus(r.URL.Query().Get("status"))
	h.list.Fetch(r.Context(), status)
	writeJSON(w, http.StatusOK, h.list.State())
}

// Create: POST /api/v1/packages
func (h *PackagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pkg, err := h.list.Create(r.Context(), req)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.PackageEnvelope{Package: pkg})
}
