package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid: запрос не прошел валидацию и в сеть не уходил.
var ErrInvalid = errors.New("invalid request")

// Один экземпляр на процесс: validator кеширует разобранные теги структур.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет теги validate у тел запросов. Ошибка оборачивает ErrInvalid.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
