// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"affinet/internal/account"
	"affinet/internal/affiliate"
	"affinet/internal/config"
	"affinet/internal/database"
	"affinet/internal/telemetry"
)

// App carries the wired collaborators shared by every command. Commands only
// touch svc, in and out, so tests can substitute fakes without a database.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *sqlx.DB
	svc       affiliate.Service
	shutdown  func(context.Context) error
	in        io.Reader
	out       io.Writer
	assumeYes bool
}

// NewRootCmd builds the affiliatectl command tree.
func NewRootCmd() *cobra.Command {
	app := &App{in: os.Stdin, out: os.Stdout}

	root := &cobra.Command{
		Use:           "affiliatectl",
		Short:         "Manage affiliate records",
		Long:          "affiliatectl creates, inspects, updates and deletes affiliate records by direct operator command.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close(cmd.Context())
		},
	}

	root.PersistentFlags().BoolVar(&app.assumeYes, "yes", false, "answer yes to any confirmation prompt")

	root.AddCommand(
		newGetCmd(app),
		newCreateCmd(app),
		newUpdateCmd(app),
		newDeleteCmd(app),
		newListCmd(app),
		newMigrateCmd(app),
	)

	return root
}

// Execute runs the CLI. Failure paths have already printed nothing; the error
// is reported once here and the caller exits non-zero.
func Execute(ctx context.Context) error {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func (a *App) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	a.logger = logger.With(zap.String("invocation_id", uuid.NewString()))

	shutdown, err := telemetry.Init(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.shutdown = shutdown

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	a.db = db

	store := affiliate.NewPostgresStore(db, a.logger)
	accounts := account.NewPostgresService(db, a.logger)
	a.svc = affiliate.NewService(store, accounts, a.logger, cfg.Multisite)

	return nil
}

func (a *App) close(ctx context.Context) error {
	if a.db != nil {
		a.db.Close()
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.PrettyLogs {
		return zap.NewDevelopment()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(level)
	return c.Build()
}

// fieldList splits a comma-separated --fields value.
func fieldList(fields string) []string {
	if fields == "" {
		return nil
	}
	parts := strings.Split(fields, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
