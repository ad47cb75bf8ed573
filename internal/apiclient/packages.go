package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
)

const pathPackages = "/api/customer/packages"

// ListPackages: GET /api/customer/packages?status=. Пустой статус вернет все пакеты.
func (c *Client) ListPackages(ctx context.Context, status domain.PackageStatus) ([]domain.Package, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}

	var env domain.PackagesEnvelope
	err := c.withRetry(ctx, func() error {
		body, err := c.send(ctx, http.MethodGet, pathPackages, q, nil)
		if err != nil {
			return err
		}
		return decode(body, &env)
	})
	if err != nil {
		return nil, err
	}

	if env.Packages == nil {
		return []domain.Package{}, nil
	}
	return env.Packages, nil
}

// CreatePackage: POST /api/customer/packages.
func (c *Client) CreatePackage(ctx context.Context, req domain.NewPackageRequest) (*domain.Package, error) {
	body, err := c.send(ctx, http.MethodPost, pathPackages, nil, req)
	if err != nil {
		return nil, err
	}

	var env domain.PackageEnvelope
	if err := decode(body, &env); err != nil {
		return nil, err
	}
	if env.Package == nil {
		return nil, errors.New("malformed response: missing package")
	}
	return env.Package, nil
}
