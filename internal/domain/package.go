package domain

import "time"

type PackageStatus string

const (
	PackageActive    PackageStatus = "active"
	PackageUpcoming  PackageStatus = "upcoming"
	PackageCompleted PackageStatus = "completed"
	PackagePending   PackageStatus = "pending"
)

// Package: пакет услуг (заказ заказчика у поставщика).
type Package struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Status       PackageStatus `json:"status"`
	ProviderName string        `json:"providerName,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Message: сообщение в ленте последней активности.
type Message struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Status      string    `json:"status,omitempty"`
	PackageName string    `json:"packageName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewPackageRequest: тело POST /api/customer/packages.
type NewPackageRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	ServiceType string   `json:"serviceType,omitempty"`
	ProviderID  string   `json:"providerId,omitempty"`
	Budget      *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
}

type PackageEnvelope struct {
	Package *Package `json:"package"`
}

type PackagesEnvelope struct {
	Packages []Package `json:"packages"`
}
