package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/xela07ax/cybermarket-dashboard/internal/console/handler"
	"github.com/xela07ax/cybermarket-dashboard/internal/console/server"
	"github.com/xela07ax/cybermarket-dashboard/internal/dashboard"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/identity"
	"github.com/xela07ax/cybermarket-dashboard/internal/journal"
	"github.com/xela07ax/cybermarket-dashboard/internal/packages"
	"github.com/xela07ax/cybermarket-dashboard/internal/repository/postgres"
	"github.com/xela07ax/cybermarket-dashboard/internal/tickets"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveDev bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep the dashboard snapshot fresh and expose it over local HTTP",
	Long: `serve mounts the dashboard aggregator, polls the marketplace API and
serves the snapshot, package and ticket lists and prometheus metrics.

With database.url set, every fetch cycle is journaled to PostgreSQL.
With identity.backend=redis, a logout signal clears the dashboard.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "Disable polling (overrides dashboard.dev_mode)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveDev {
		cfg.Dashboard.DevMode = true
	}

	// 1. Инфраструктура
	store, rdb, err := openStore(ctx)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	opts := []dashboard.Option{dashboard.WithMetrics(dashboard.NewMetrics(reg))}

	// 2. Журнал циклов (опционально). Останавливается после агрегатора, чтобы забрать последние записи.
	if cfg.Database.URL != "" {
		repo, err := postgres.NewJournalRepo(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("journal schema: %w", err)
		}

		j := journal.New(repo, cfg.Journal, logger)
		j.Start()
		defer j.Stop()
		opts = append(opts, dashboard.WithRecorder(j))
	}

	// 3. Ядро
	client := newClient()
	agg := dashboard.New(client, store, dashboard.Config{
		PollInterval:   cfg.Dashboard.PollInterval,
		RequestTimeout: cfg.Dashboard.RequestTimeout,
		DevMode:        cfg.Dashboard.DevMode,
		IdentityKey:    cfg.Identity.Key,
	}, logger, opts...)

	console := server.NewConsoleServer(logger, reg,
		handler.NewDashboardHandler(agg),
		handler.NewPackagesHandler(packages.New(client, logger)),
		handler.NewTicketsHandler(tickets.New(client, logger)),
	)
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      console,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 4. Жизненный цикл
	g, gctx := errgroup.WithContext(ctx)

	var watcher *identity.Watcher
	if rdb != nil {
		watcher = identity.NewWatcher(rdb, logger)
	}

	g.Go(func() error {
		agg.Start(gctx)
		if watcher != nil {
			checkRevoked(gctx, watcher, agg, logger)
		}
		<-gctx.Done()
		agg.Stop()
		return nil
	})

	if watcher != nil {
		g.Go(func() error {
			watcher.Run(gctx, logoutHandler(agg))
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("console server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("console server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("dashboard stopped")
	return err
}

// session: текущий пользователь дашборда и его сброс.
type session interface {
	Identity() domain.Identity
	ClearIdentity()
}

type revocations interface {
	IsRevoked(ctx context.Context, userID string) (bool, error)
}

// logoutHandler гасит дашборд, если сигнал логаута пришел для текущего пользователя.
// Чужие логауты игнорируются.
func logoutHandler(s session) func(userID string) {
	return func(userID string) {
		if user := s.Identity(); user != nil && user.ID() == userID {
			s.ClearIdentity()
		}
	}
}

// checkRevoked гасит дашборд, если логаут случился, пока клиент был выключен.
func checkRevoked(ctx context.Context, r revocations, s session, log *zap.Logger) {
	user := s.Identity()
	if user == nil {
		return
	}
	revoked, err := r.IsRevoked(ctx, user.ID())
	if err != nil {
		log.Warn("could not check revoked sessions", zap.Error(err))
		return
	}
	if revoked {
		log.Info("session revoked while offline", zap.String("user_id", user.ID()))
		s.ClearIdentity()
	}
}
