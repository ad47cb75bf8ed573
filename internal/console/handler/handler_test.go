package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/cybermarket-dashboard/internal/dashboard"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/packages"
	"github.com/xela07ax/cybermarket-dashboard/internal/tickets"
	"go.uber.org/zap"
)

func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type fakeDashboard struct {
	snap      dashboard.Snapshot
	triggered bool
	refetches int
	ctxErr    error
}

func (f *fakeDashboard) Snapshot() dashboard.Snapshot { return f.snap }

func (f *fakeDashboard) Refetch(ctx context.Context) bool {
	f.refetches++
	f.ctxErr = ctx.Err()
	return f.triggered
}

func TestGetSnapshot(t *testing.T) {
	svc := &fakeDashboard{snap: dashboard.Snapshot{
		Stats: &domain.DashboardStats{Packages: domain.PackageStats{Total: 8}},
	}}
	h := NewDashboardHandler(svc)

	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got dashboard.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 8, got.Stats.Packages.Total)
}

func TestRefetch_DetachedFromRequest(t *testing.T) {
	svc := &fakeDashboard{triggered: true}
	h := NewDashboardHandler(svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dashboard/refetch", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.Refetch(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, svc.refetches)
	assert.NoError(t, svc.ctxErr)

	var got refetchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Triggered)
}

type fakePackages struct {
	state     packages.State
	gotStatus domain.PackageStatus
	created   *domain.Package
	err       error
}

func (f *fakePackages) Fetch(_ context.Context, status domain.PackageStatus) { f.gotStatus = status }

func (f *fakePackages) Create(context.Context, domain.NewPackageRequest) (*domain.Package, error) {
	return f.created, f.err
}

func (f *fakePackages) State() packages.State { return f.state }

func TestPackagesList_PassesStatus(t *testing.T) {
	l := &fakePackages{state: packages.State{Packages: []domain.Package{{ID: "a"}}}}
	h := NewPackagesHandler(l)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/packages?status=active", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PackageActive, l.gotStatus)
	assert.Contains(t, rec.Body.String(), `"id":"a"`)
}

func TestPackagesCreate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "created", body: `{"name":"X"}`, status: http.StatusCreated},
		{name: "bad json", body: `{`, status: http.StatusBadRequest},
		{name: "invalid request", body: `{}`, err: fmt.Errorf("create package: %w", domain.ErrInvalid), status: http.StatusBadRequest},
		{name: "upstream 4xx passes through", body: `{"name":"X"}`, err: &domain.RequestFailedError{Status: http.StatusForbidden}, status: http.StatusForbidden},
		{name: "upstream 5xx", body: `{"name":"X"}`, err: &domain.RequestFailedError{Status: http.StatusInternalServerError}, status: http.StatusBadGateway},
		{name: "no response", body: `{"name":"X"}`, err: domain.ErrNoResponse, status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPackagesHandler(&fakePackages{created: &domain.Package{ID: "p1", Name: "X"}, err: tt.err})

			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/packages", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

type fakeTickets struct {
	gotFilter domain.TicketFilter
	gotID     string
	ticket    *domain.Ticket
	err       error
}

func (f *fakeTickets) Fetch(_ context.Context, flt domain.TicketFilter) { f.gotFilter = flt }

func (f *fakeTickets) Create(context.Context, domain.NewTicketRequest) (*domain.Ticket, error) {
	return f.ticket, f.err
}

func (f *fakeTickets) Respond(_ context.Context, id string, _ domain.TicketResponseRequest) (*domain.Ticket, error) {
	f.gotID = id
	return f.ticket, f.err
}

func (f *fakeTickets) State() tickets.State { return tickets.State{Tickets: []domain.Ticket{}} }

func TestTicketsList_Filter(t *testing.T) {
	b := &fakeTickets{}
	h := NewTicketsHandler(b)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tickets?status=open&priority=high", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TicketFilter{Status: domain.TicketOpen, Priority: domain.PriorityHigh}, b.gotFilter)
}

func TestTicketsRespond(t *testing.T) {
	b := &fakeTickets{ticket: &domain.Ticket{ID: "t9", Status: domain.TicketInProgress}}
	h := NewTicketsHandler(b)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/tickets/t9", strings.NewReader(`{"message":"on it"}`))
	rec := httptest.NewRecorder()
	h.Respond(rec, withChiURLParam(req, "id", "t9"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t9", b.gotID)
	assert.Contains(t, rec.Body.String(), `"in_progress"`)
}

func TestTicketsRespond_Timeout(t *testing.T) {
	h := NewTicketsHandler(&fakeTickets{err: domain.ErrRequestAborted})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/tickets/t9", strings.NewReader(`{"message":"x"}`))
	rec := httptest.NewRecorder()
	h.Respond(rec, withChiURLParam(req, "id", "t9"))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

// countingSource: источник пакетов и обращений, который только считает обращения к сети.
type countingSource struct {
	calls int
}

func (s *countingSource) ListPackages(context.Context, domain.PackageStatus) ([]domain.Package, error) {
	s.calls++
	return nil, nil
}

func (s *countingSource) CreatePackage(_ context.Context, req domain.NewPackageRequest) (*domain.Package, error) {
	s.calls++
	return &domain.Package{ID: "p1", Name: req.Name}, nil
}

func (s *countingSource) ListTickets(context.Context, domain.TicketFilter) ([]domain.Ticket, error) {
	s.calls++
	return nil, nil
}

func (s *countingSource) CreateTicket(_ context.Context, req domain.NewTicketRequest) (*domain.Ticket, error) {
	s.calls++
	return &domain.Ticket{ID: "t1", Subject: req.Subject}, nil
}

func (s *countingSource) RespondToTicket(_ context.Context, id string, _ domain.TicketResponseRequest) (*domain.Ticket, error) {
	s.calls++
	return &domain.Ticket{ID: id}, nil
}

func TestPackagesCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "valid", body: `{"name":"Pentest","budget":100}`, status: http.StatusCreated},
		{name: "missing name", body: `{"budget":100}`, status: http.StatusBadRequest},
		{name: "negative budget", body: `{"name":"Pentest","budget":-5}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{}
			h := NewPackagesHandler(packages.New(src, zap.NewNop()))

			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/packages", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusBadRequest {
				assert.Zero(t, src.calls, "invalid request must not reach the API")
			}
		})
	}
}

func TestTicketsCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "valid", body: `{"subject":"VPN","description":"down","priority":"high"}`, status: http.StatusCreated},
		{name: "no priority", body: `{"subject":"VPN","description":"down"}`, status: http.StatusCreated},
		{name: "missing description", body: `{"subject":"x"}`, status: http.StatusBadRequest},
		{name: "unknown priority", body: `{"subject":"VPN","description":"down","priority":"bogus"}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{}
			h := NewTicketsHandler(tickets.New(src, zap.NewNop()))

			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/tickets", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusBadRequest {
				assert.Zero(t, src.calls)
			}
		})
	}
}

func TestTicketsRespond_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "message with status", body: `{"message":"fixed","status":"resolved"}`, status: http.StatusOK},
		{name: "empty message", body: `{"message":""}`, status: http.StatusBadRequest},
		{name: "unknown status", body: `{"message":"x","status":"done"}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{}
			h := NewTicketsHandler(tickets.New(src, zap.NewNop()))

			req := httptest.NewRequest(http.MethodPut, "/api/v1/tickets/t9", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Respond(rec, withChiURLParam(req, "id", "t9"))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusBadRequest {
				assert.Zero(t, src.calls)
			}
		})
	}
}
