package tickets

import (
	"context"
	"fmt"
	"sync"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"go.uber.org/zap"
)

type Source interface {
	ListTickets(ctx context.Context, f domain.TicketFilter) ([]domain.Ticket, error)
	CreateTicket(ctx context.Context, req domain.NewTicketRequest) (*domain.Ticket, error)
	RespondToTicket(ctx context.Context, id string, req domain.TicketResponseRequest) (*domain.Ticket, error)
}

type State struct {
	Tickets []domain.Ticket `json:"tickets"`
	Loading bool            `json:"loading"`
	Error   string          `json:"error,omitempty"`
}

// Board: обращения в поддержку текущего заказчика.
type Board struct {
	source Source
	logger *zap.Logger

	mu      sync.RWMutex
	tickets []domain.Ticket
	loading bool
	errMsg  string
}

func New(source Source, logger *zap.Logger) *Board {
	return &Board{
		source:  source,
		logger:  logger.Named("tickets"),
		tickets: []domain.Ticket{},
	}
}

// Fetch перечитывает обращения по фильтру. Ошибка оседает в State.Error.
func (b *Board) Fetch(ctx context.Context, f domain.TicketFilter) {
	b.mu.Lock()
	b.loading = true
	b.errMsg = ""
	b.mu.Unlock()

	list, err := b.source.ListTickets(ctx, f)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		b.errMsg = fmt.Sprintf("failed to fetch tickets: %v", err)
		b.logger.Error("fetch tickets failed",
			zap.String("status", string(f.Status)),
			zap.String("priority", string(f.Priority)),
			zap.Error(err))
		return
	}
	b.tickets = list
}

func (b *Board) Create(ctx context.Context, req domain.NewTicketRequest) (*domain.Ticket, error) {
	if err := domain.Validate(req); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	t, err := b.source.CreateTicket(ctx, req)
	if err != nil {
		b.logger.Error("create ticket failed", zap.Error(err))
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	b.mu.Lock()
	b.tickets = append([]domain.Ticket{*t}, b.tickets...)
	b.mu.Unlock()
	return t, nil
}

// Respond добавляет ответ в переписку и заменяет обращение в списке на версию сервера.
// Если обращения в списке нет (другой фильтр), список не меняется.
func (b *Board) Respond(ctx context.Context, id string, req domain.TicketResponseRequest) (*domain.Ticket, error) {
	if err := domain.Validate(req); err != nil {
		return nil, fmt.Errorf("respond to ticket %s: %w", id, err)
	}

	t, err := b.source.RespondToTicket(ctx, id, req)
	if err != nil {
		b.logger.Error("respond to ticket failed", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("respond to ticket %s: %w", id, err)
	}

	b.mu.Lock()
	for i := range b.tickets {
		if b.tickets[i].ID == t.ID {
			b.tickets[i] = *t
			break
		}
	}
	b.mu.Unlock()
	return t, nil
}

func (b *Board) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()

	list := make([]domain.Ticket, len(b.tickets))
	copy(list, b.tickets)
	return State{Tickets: list, Loading: b.loading, Error: b.errMsg}
}
