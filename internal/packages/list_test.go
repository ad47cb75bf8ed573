package packages

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/cybermarket-dashboard/internal/apiclient"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/infra"
	"go.uber.org/zap"
)

type fakeSource struct {
	list      []domain.Package
	listErr   error
	created   *domain.Package
	createErr error

	gotStatus   domain.PackageStatus
	createCalls int
}

func (f *fakeSource) ListPackages(_ context.Context, status domain.PackageStatus) ([]domain.Package, error) {
	f.gotStatus = status
	return f.list, f.listErr
}

func (f *fakeSource) CreatePackage(context.Context, domain.NewPackageRequest) (*domain.Package, error) {
	f.createCalls++
	return f.created, f.createErr
}

func TestFetch(t *testing.T) {
	src := &fakeSource{list: []domain.Package{{ID: "a", Status: domain.PackageActive}}}
	l := New(src, zap.NewNop())

	l.Fetch(context.Background(), domain.PackageActive)

	st := l.State()
	assert.Equal(t, domain.PackageActive, src.gotStatus)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	require.Len(t, st.Packages, 1)
	assert.Equal(t, "a", st.Packages[0].ID)
}

func TestFetch_ErrorKeepsList(t *testing.T) {
	src := &fakeSource{list: []domain.Package{{ID: "a"}}}
	l := New(src, zap.NewNop())
	l.Fetch(context.Background(), "")

	src.list, src.listErr = nil, &domain.RequestFailedError{Status: http.StatusInternalServerError}
	l.Fetch(context.Background(), "")

	st := l.State()
	assert.Contains(t, st.Error, "failed to fetch packages")
	assert.Len(t, st.Packages, 1)
	assert.False(t, st.Loading)
}

func TestCreate_Prepends(t *testing.T) {
	src := &fakeSource{
		list:    []domain.Package{{ID: "old", Name: "Old"}},
		created: &domain.Package{ID: "p1", Name: "X"},
	}
	l := New(src, zap.NewNop())
	l.Fetch(context.Background(), "")

	pkg, err := l.Create(context.Background(), domain.NewPackageRequest{Name: "X"})
	require.NoError(t, err)
	assert.Equal(t, "p1", pkg.ID)

	st := l.State()
	require.Len(t, st.Packages, 2)
	assert.Equal(t, "p1", st.Packages[0].ID)
	assert.Equal(t, "old", st.Packages[1].ID)
}

func TestCreate_ErrorReturned(t *testing.T) {
	cause := &domain.RequestFailedError{Status: http.StatusBadRequest}
	l := New(&fakeSource{createErr: cause}, zap.NewNop())

	_, err := l.Create(context.Background(), domain.NewPackageRequest{Name: "X"})

	var rf *domain.RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, http.StatusBadRequest, rf.Status)
	assert.Empty(t, l.State().Packages)
	assert.Empty(t, l.State().Error, "mutations do not touch the read error")
}

func TestState_IsCopy(t *testing.T) {
	l := New(&fakeSource{list: []domain.Package{{ID: "a"}}}, zap.NewNop())
	l.Fetch(context.Background(), "")

	st := l.State()
	st.Packages[0].ID = "mutated"
	assert.Equal(t, "a", l.State().Packages[0].ID)
}

func TestCreate_RoundTripOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"packages":[]}`))
		case http.MethodPost:
			var req domain.NewPackageRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"package": map[string]any{"id": "p1", "name": req.Name, "status": "pending"},
			})
		}
	}))
	defer srv.Close()

	client := apiclient.New(infra.APIConfig{BaseURL: srv.URL}, zap.NewNop())
	l := New(client, zap.NewNop())
	l.Fetch(context.Background(), "")

	_, err := l.Create(context.Background(), domain.NewPackageRequest{Name: "X"})
	require.NoError(t, err)

	st := l.State()
	require.Len(t, st.Packages, 1)
	assert.Equal(t, "p1", st.Packages[0].ID)
	assert.Equal(t, "X", st.Packages[0].Name)
}

func TestCreate_InvalidNotSent(t *testing.T) {
	negative := -5.0
	tests := []struct {
		name string
		req  domain.NewPackageRequest
	}{
		{name: "missing name", req: domain.NewPackageRequest{Description: "d"}},
		{name: "negative budget", req: domain.NewPackageRequest{Name: "X", Budget: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{created: &domain.Package{ID: "p1"}}
			l := New(src, zap.NewNop())

			_, err := l.Create(context.Background(), tt.req)

			require.ErrorIs(t, err, domain.ErrInvalid)
			assert.Zero(t, src.createCalls)
			assert.Empty(t, l.State().Packages)
		})
	}
}

func TestCreate_ZeroBudgetAllowed(t *testing.T) {
	zero := 0.0
	src := &fakeSource{created: &domain.Package{ID: "p1"}}
	l := New(src, zap.NewNop())

	_, err := l.Create(context.Background(), domain.NewPackageRequest{Name: "X", Budget: &zero})
	require.NoError(t, err)
	assert.Equal(t, 1, src.createCalls)
}
