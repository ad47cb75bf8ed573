package domain

import "time"

// Company: профиль организации поставщика (GET /api/getCompany).
type Company struct {
	ID            string    `json:"id"`
	CompanyName   string    `json:"companyName"`
	WorkEmail     string    `json:"workEmail,omitempty"`
	Website       string    `json:"website,omitempty"`
	Industry      string    `json:"industry,omitempty"`
	EmployeeCount string    `json:"employeeCount,omitempty"`
	Services      []string  `json:"services,omitempty"`
	Description   string    `json:"description,omitempty"`
	LogoURL       string    `json:"logoUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CompanyEnvelope: company == nil для новых поставщиков, это не ошибка.
type CompanyEnvelope struct {
	Company *Company `json:"company"`
}

// Clone копирует профиль вместе со списком услуг.
func (c *Company) Clone() *Company {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Services = append([]string(nil), c.Services...)
	return &cp
}

// CompanyProfileRequest: форма создания профиля (POST /api/createCompany).
// Логотип загружается во внешнее хранилище заранее, сюда попадает только URL.
type CompanyProfileRequest struct {
	CompanyName   string   `json:"companyName" validate:"required,max=200"`
	WorkEmail     string   `json:"workEmail" validate:"required,email"`
	Website       string   `json:"website,omitempty" validate:"omitempty,url"`
	Industry      string   `json:"industry,omitempty"`
	EmployeeCount string   `json:"employeeCount,omitempty"`
	Services      []string `json:"services" validate:"min=1,dive,required"`
	Description   string   `json:"description,omitempty" validate:"max=5000"`
	LogoURL       string   `json:"logoUrl,omitempty" validate:"omitempty,url"`
}
