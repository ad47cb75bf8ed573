package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
)

const pathTickets = "/api/customer/support/tickets"

var errMissingTicket = errors.New("malformed response: missing ticket")

// ListTickets: GET /api/customer/support/tickets?status=&priority=.
func (c *Client) ListTickets(ctx context.Context, f domain.TicketFilter) ([]domain.Ticket, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}

	var env domain.TicketsEnvelope
	err := c.withRetry(ctx, func() error {
		body, err := c.send(ctx, http.MethodGet, pathTickets, q, nil)
		if err != nil {
			return err
		}
		return decode(body, &env)
	})
	if err != nil {
		return nil, err
	}

	if env.Tickets == nil {
		return []domain.Ticket{}, nil
	}
	return env.Tickets, nil
}

// CreateTicket: POST /api/customer/support/tickets.
func (c *Client) CreateTicket(ctx context.Context, req domain.NewTicketRequest) (*domain.Ticket, error) {
	body, err := c.send(ctx, http.MethodPost, pathTickets, nil, req)
	if err != nil {
		return nil, err
	}
	return decodeTicket(body)
}

// RespondToTicket: PUT /api/customer/support/tickets/:id, добавляет ответ в переписку.
func (c *Client) RespondToTicket(ctx context.Context, id string, req domain.TicketResponseRequest) (*domain.Ticket, error) {
	if id == "" {
		return nil, errors.New("ticket id is required")
	}

	body, err := c.send(ctx, http.MethodPut, pathTickets+"/"+url.PathEscape(id), nil, req)
	if err != nil {
		return nil, err
	}
	return decodeTicket(body)
}

func decodeTicket(body []byte) (*domain.Ticket, error) {
	var env domain.TicketEnvelope
	if err := decode(body, &env); err != nil {
		return nil, err
	}
	if env.Ticket == nil {
		return nil, errMissingTicket
	}
	return env.Ticket, nil
}
