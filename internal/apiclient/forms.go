package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
)

const (
	pathBids          = "/api/bids"
	pathCreateCompany = "/api/createCompany"
	pathSendEmail     = "/api/sendEmail"
)

// SubmitBid: POST /api/bids. Успехом считается любой 2xx, тело не используется.
func (c *Client) SubmitBid(ctx context.Context, bid domain.Bid) error {
	_, err := c.send(ctx, http.MethodPost, pathBids, nil, bid)
	return err
}

// CreateCompany: POST /api/createCompany. Тело ответа возвращается как есть.
func (c *Client) CreateCompany(ctx context.Context, req domain.CompanyProfileRequest) (json.RawMessage, error) {
	body, err := c.send(ctx, http.MethodPost, pathCreateCompany, nil, req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// SendEmail: POST /api/sendEmail (форма обратной связи).
func (c *Client) SendEmail(ctx context.Context, msg domain.ContactMessage) error {
	_, err := c.send(ctx, http.MethodPost, pathSendEmail, nil, msg)
	return err
}
