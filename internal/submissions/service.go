package submissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"go.uber.org/zap"
)

// RedirectAfterBid: куда отправить пользователя после успешной заявки.
const RedirectAfterBid = "/dashboard"

// ErrInvalid: форма не прошла валидацию, запрос не отправлялся.
var ErrInvalid = domain.ErrInvalid

type Sender interface {
	SubmitBid(ctx context.Context, bid domain.Bid) error
	CreateCompany(ctx context.Context, req domain.CompanyProfileRequest) (json.RawMessage, error)
	SendEmail(ctx context.Context, msg domain.ContactMessage) error
}

// Failure: почему не удалось создать профиль организации.
type Failure string

const (
	FailureServer     Failure = "server_response" // сервер ответил ошибкой, тело в Body
	FailureNoResponse Failure = "no_response"
	FailureUnexpected Failure = "unexpected"
)

type ProfileError struct {
	Failure Failure
	Body    []byte
	Err     error
}

func (e *ProfileError) Error() string {
	switch e.Failure {
	case FailureServer:
		return fmt.Sprintf("company profile rejected: %s", string(e.Body))
	case FailureNoResponse:
		return "company profile: no response from server"
	default:
		return fmt.Sprintf("company profile: %v", e.Err)
	}
}

func (e *ProfileError) Unwrap() error { return e.Err }

type Service struct {
	sender Sender
	logger *zap.Logger
}

func New(sender Sender, logger *zap.Logger) *Service {
	return &Service{
		sender: sender,
		logger: logger.Named("submissions"),
	}
}

// SubmitBid отправляет заявку и возвращает путь для редиректа.
// При ошибке редиректа нет.
func (s *Service) SubmitBid(ctx context.Context, bid domain.Bid) (string, error) {
	if err := domain.Validate(bid); err != nil {
		return "", err
	}

	if err := s.sender.SubmitBid(ctx, bid); err != nil {
		s.logger.Error("bid submission failed", zap.String("company", bid.CompanyName), zap.Error(err))
		return "", fmt.Errorf("submit bid: %w", err)
	}

	s.logger.Info("bid submitted", zap.String("company", bid.CompanyName), zap.String("service", bid.ServiceType))
	return RedirectAfterBid, nil
}

// CreateCompanyProfile создает профиль и возвращает тело ответа сервера.
// Ошибка отправки всегда *ProfileError.
func (s *Service) CreateCompanyProfile(ctx context.Context, req domain.CompanyProfileRequest) (json.RawMessage, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	body, err := s.sender.CreateCompany(ctx, req)
	if err == nil {
		s.logger.Info("company profile created", zap.String("company", req.CompanyName))
		return body, nil
	}

	pe := &ProfileError{Failure: FailureUnexpected, Err: err}
	var re *domain.ResponseError
	switch {
	case errors.As(err, &re):
		pe.Failure = FailureServer
		pe.Body = re.Body
		s.logger.Error("company profile rejected by server",
			zap.Int("status", re.Status),
			zap.ByteString("body", re.Body))
	case errors.Is(err, domain.ErrNoResponse), errors.Is(err, domain.ErrRequestAborted):
		pe.Failure = FailureNoResponse
		s.logger.Error("company profile: no response", zap.Error(err))
	default:
		s.logger.Error("company profile: unexpected error", zap.Error(err))
	}
	return nil, pe
}

// SendContact отправляет форму обратной связи. Ошибки только логируются.
func (s *Service) SendContact(ctx context.Context, msg domain.ContactMessage) {
	if err := domain.Validate(msg); err != nil {
		s.logger.Warn("contact form invalid", zap.Error(err))
		return
	}
	if err := s.sender.SendEmail(ctx, msg); err != nil {
		s.logger.Error("contact form submission failed", zap.String("email", msg.Email), zap.Error(err))
		return
	}
	s.logger.Info("contact form sent", zap.String("email", msg.Email))
}
