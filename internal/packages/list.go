package packages

import (
	"context"
	"fmt"
	"sync"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"go.uber.org/zap"
)

// Source: эндпоинты пакетов API.
type Source interface {
	ListPackages(ctx context.Context, status domain.PackageStatus) ([]domain.Package, error)
	CreatePackage(ctx context.Context, req domain.NewPackageRequest) (*domain.Package, error)
}

// State: снимок списка пакетов.
type State struct {
	Packages []domain.Package `json:"packages"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
}

// List хранит список пакетов заказчика. Чтение глотает ошибки в State.Error,
// создание возвращает ошибку вызывающему.
type List struct {
	source Source
	logger *zap.Logger

	mu       sync.RWMutex
	packages []domain.Package
	loading  bool
	errMsg   string
}

func New(source Source, logger *zap.Logger) *List {
	return &List{
		source:   source,
		logger:   logger.Named("packages"),
		packages: []domain.Package{},
	}
}

// Fetch перечитывает список. При ошибке прежний список остается на месте.
func (l *List) Fetch(ctx context.Context, status domain.PackageStatus) {
	l.mu.Lock()
	l.loading = true
	l.errMsg = ""
	l.mu.Unlock()

	list, err := l.source.ListPackages(ctx, status)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.errMsg = fmt.Sprintf("failed to fetch packages: %v", err)
		l.logger.Error("fetch packages failed", zap.String("status", string(status)), zap.Error(err))
		return
	}
	l.packages = list
}

// Create создает пакет и ставит его в начало списка.
func (l *List) Create(ctx context.Context, req domain.NewPackageRequest) (*domain.Package, error) {
	if err := domain.Validate(req); err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}

	pkg, err := l.source.CreatePackage(ctx, req)
	if err != nil {
		l.logger.Error("create package failed", zap.String("name", req.Name), zap.Error(err))
		return nil, fmt.Errorf("create package: %w", err)
	}

	l.mu.Lock()
	l.packages = append([]domain.Package{*pkg}, l.packages...)
	l.mu.Unlock()

	l.logger.Info("package created", zap.String("id", pkg.ID))
	return pkg, nil
}

func (l *List) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pkgs := make([]domain.Package, len(l.packages))
	copy(pkgs, l.packages)
	return State{Packages: pkgs, Loading: l.loading, Error: l.errMsg}
}
