package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/xela07ax/cybermarket-dashboard/internal/apiclient"
	"github.com/xela07ax/cybermarket-dashboard/internal/identity"
	"github.com/xela07ax/cybermarket-dashboard/internal/infra"
	"go.uber.org/zap"
)

var (
	configPath string

	cfg    *infra.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Headless client of the cybersecurity marketplace dashboard",
	Long: `dashboard talks to the marketplace API the way the web dashboard does:
it keeps the stats snapshot fresh by polling, lists packages and support
tickets, and submits bids, company profiles and contact forms.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = infra.LoadConfig(configPath); err != nil {
			return err
		}
		if logger, err = infra.NewLogger(cfg.Logger); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ./config.yaml or ./configs/config.yaml)")
}

func newClient() *apiclient.Client {
	return apiclient.New(cfg.API, logger)
}

// openStore открывает локальное хранилище identity. rdb != nil только для бэкенда redis.
func openStore(ctx context.Context) (identity.Store, *redis.Client, error) {
	switch cfg.Identity.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis unreachable: %w", err)
		}
		return identity.NewRedisStore(rdb), rdb, nil
	default:
		return identity.NewFileStore(cfg.Identity.FilePath), nil, nil
	}
}

// authorize читает identity и передает токен сессии клиенту.
func authorize(ctx context.Context, client *apiclient.Client) error {
	store, rdb, err := openStore(ctx)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	user, err := identity.Load(ctx, store, cfg.Identity.Key)
	if err != nil {
		return err
	}
	client.SetToken(user.Token())
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readPayload читает JSON из файла или stdin ("-").
func readPayload(cmd *cobra.Command, path string, into any) error {
	var r io.Reader
	switch path {
	case "":
		return errors.New("--file is required")
	case "-":
		r = cmd.InOrStdin()
	default:
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
