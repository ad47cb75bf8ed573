package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrIdentityUnavailable: в локальном хранилище нет пригодной записи пользователя.
	// Терминально для сессии: без нового логина не повторяется.
	ErrIdentityUnavailable = errors.New("failed to load user data")

	// ErrRequestAborted: запрос отменен по клиентскому таймауту.
	ErrRequestAborted = errors.New("request aborted")

	// ErrNoResponse: сервер не ответил (сеть, DNS, отказ соединения).
	ErrNoResponse = errors.New("no response from server")
)

// RequestFailedError: сервер ответил не-2xx.
type RequestFailedError struct {
	Status int
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsNotFound позволяет отличить ожидаемое отсутствие ресурса (404).
func (e *RequestFailedError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// ResponseError: сервер ответил ошибкой и вернул тело, которое нужно показать пользователю.
type ResponseError struct {
	Status int
	Body   []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("server responded with status %d: %s", e.Status, string(e.Body))
}

func (e *ResponseError) Unwrap() error {
	return &RequestFailedError{Status: e.Status}
}

// ErrorKind: классификация ошибки для снапшота и логов.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindIdentityUnavailable ErrorKind = "identity_unavailable"
	KindRequestFailed       ErrorKind = "request_failed"
	KindRequestAborted      ErrorKind = "request_aborted"
)

// Classify определяет вид ошибки. Все неизвестные сбои считаются request_failed.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrIdentityUnavailable):
		return KindIdentityUnavailable
	case errors.Is(err, ErrRequestAborted):
		return KindRequestAborted
	default:
		return KindRequestFailed
	}
}
