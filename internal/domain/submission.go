package domain

// Bid: заявка бизнеса на услуги (POST /api/bids).
type Bid struct {
	CompanyName string  `json:"companyName" validate:"required"`
	ContactName string  `json:"contactName" validate:"required"`
	WorkEmail   string  `json:"workEmail" validate:"required,email"`
	Phone       string  `json:"phone,omitempty"`
	ServiceType string  `json:"serviceType" validate:"required"`
	Budget      float64 `json:"budget" validate:"gte=0"`
	Timeline    string  `json:"timeline,omitempty"`
	Description string  `json:"description" validate:"required"`
}

// ContactMessage: форма обратной связи (POST /api/sendEmail).
type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message" validate:"required"`
}
