package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role: роль пользователя маркетплейса.
type Role string

const (
	RoleCustomer Role = "customer" // Заказчик услуг ИБ
	RoleProvider Role = "provider" // Поставщик услуг (есть профиль организации)
	RoleAdmin    Role = "admin"
)

var ErrUnknownRole = errors.New("unknown identity role")

// Identity имеет закрытый набор вариантов: Customer, Provider, Admin.
// Снимок читается один раз при старте и больше не меняется.
type Identity interface {
	ID() string
	Role() Role
	WorkEmail() string
	CompanyName() string
	Token() string

	sealed()
}

// Account: общие поля сериализованной записи `user` из локального хранилища.
type Account struct {
	UserID       string          `json:"id"`
	UserRole     Role            `json:"role"`
	Email        string          `json:"workEmail"`
	Company      string          `json:"companyName"`
	Profile      json.RawMessage `json:"profile,omitempty"`
	SessionToken string          `json:"token,omitempty"` // Никогда не логируем
}

func (a Account) ID() string          { return a.UserID }
func (a Account) Role() Role          { return a.UserRole }
func (a Account) WorkEmail() string   { return a.Email }
func (a Account) CompanyName() string { return a.Company }
func (a Account) Token() string       { return a.SessionToken }

type Customer struct{ Account }

// Provider: единственный вариант, для которого запрашивается профиль организации.
type Provider struct{ Account }

type Admin struct{ Account }

func (Customer) sealed() {}
func (Provider) sealed() {}
func (Admin) sealed()    {}

// ParseIdentity разбирает JSON-запись и возвращает конкретный вариант по роли.
func ParseIdentity(data []byte) (Identity, error) {
	var acc Account
	if err := json.Unmarshal(data, &acc); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}

	switch acc.UserRole {
	case RoleCustomer:
		return Customer{acc}, nil
	case RoleProvider:
		return Provider{acc}, nil
	case RoleAdmin:
		return Admin{acc}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, acc.UserRole)
	}
}
