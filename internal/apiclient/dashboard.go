package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
)

const (
	pathDashboardStats = "/api/customer/dashboard/stats"
	pathCompany        = "/api/getCompany"
)

var errMissingStats = errors.New("malformed response: missing stats")

// DashboardStats: GET /api/customer/dashboard/stats. Одна попытка, без повторов.
func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	body, err := c.send(ctx, http.MethodGet, pathDashboardStats, nil, nil)
	if err != nil {
		return nil, err
	}

	var env domain.StatsEnvelope
	if err := decode(body, &env); err != nil {
		return nil, err
	}
	if env.Stats == nil {
		return nil, errMissingStats
	}
	return env.Stats, nil
}

// Company: GET /api/getCompany. (nil, nil) означает, что у поставщика еще нет профиля.
func (c *Client) Company(ctx context.Context) (*domain.Company, error) {
	body, err := c.send(ctx, http.MethodGet, pathCompany, nil, nil)
	if err != nil {
		return nil, err
	}

	var env domain.CompanyEnvelope
	if err := decode(body, &env); err != nil {
		return nil, err
	}
	return env.Company, nil
}
