package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/villabook/internal/client/api"
	"github.com/iudanet/villabook/internal/client/auth"
	"github.com/iudanet/villabook/internal/client/events"
	"github.com/iudanet/villabook/internal/client/iocli"
	"github.com/iudanet/villabook/internal/client/locale"
	"github.com/iudanet/villabook/internal/client/storage"
	"github.com/iudanet/villabook/internal/client/storage/boltdb"
	"github.com/iudanet/villabook/internal/config"
	"github.com/iudanet/villabook/internal/logging"
)

// Version is reported by --version; set via ldflags.
var Version = "dev"

// app собирает зависимости перед выполнением команды и закрывает их после
type app struct {
	cfg     *config.Client
	io      iocli.IO
	cli     *Cli
	db      *boltdb.Storage
	unsub   func()
	verbose bool
}

// NewRootCommand creates the villabook command tree.
// cfg holds env defaults; persistent flags override them.
func NewRootCommand(cfg *config.Client, io iocli.IO) *cobra.Command {
	a := &app{cfg: cfg, io: io}

	rootCmd := &cobra.Command{
		Use:   "villabook",
		Short: "VillaBook - browse and book villas from the terminal",
		Long: `VillaBook client talks to the VillaBook API: account management,
villa catalog and bookings. Sessions are stored locally and refreshed
transparently when the access token expires.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "API base URL")
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to local database")
	flags.StringVar(&cfg.Lang, "lang", cfg.Lang, "Preferred language (en, fr, es, ar)")
	flags.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Per-request timeout")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging to stderr")

	rootCmd.SetOut(io)
	rootCmd.SetErr(os.Stderr)

	rootCmd.AddCommand(
		newRegisterCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newStatusCommand(a),
		newMeCommand(a),
		newVillasCommand(a),
		newBookingsCommand(a),
		newLocaleCommand(a),
	)

	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, cfg *config.Client, io iocli.IO, args []string) int {
	cmd := NewRootCommand(cfg, io)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", describeError(err))
		return 1
	}
	return 0
}

func (a *app) setup(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewCLILogger(a.cfg.Environment, os.Stderr, a.verbose)

	db, err := boltdb.New(ctx, a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db

	resolver := locale.NewResolver()
	stored, err := db.GetPreference(ctx, locale.PreferenceKey)
	if err != nil && !errors.Is(err, storage.ErrPreferenceNotFound) {
		logger.WarnContext(ctx, "failed to read locale preference", slog.Any("error", err))
	}
	lang := resolver.Resolve(a.cfg.Lang, stored, a.cfg.SystemLang)

	bus := events.NewBus()

	var c *Cli
	apiClient := api.NewClient(a.cfg.ServerURL,
		api.WithTimeout(a.cfg.RequestTimeout),
		api.WithCredentialStore(db),
		api.WithPublisher(bus),
		api.WithNavigator(api.NavigatorFunc(func(path string) { c.Navigate(path) })),
		api.WithLocale(func() string { return c.Locale() }),
		api.WithLogger(logger),
	)
	authService := auth.NewService(apiClient, db, logger)

	c = New(a.io, apiClient, authService, db, resolver, logger, lang)
	a.unsub = bus.Subscribe(events.AuthFailure, c.onAuthFailure)
	a.cli = c

	if _, err := authService.Restore(ctx); err != nil {
		logger.WarnContext(ctx, "failed to restore session", slog.Any("error", err))
	}

	logger.DebugContext(ctx, "client ready",
		slog.String("server", a.cfg.ServerURL),
		slog.String("locale", lang),
		slog.Duration("timeout", a.cfg.RequestTimeout))

	return nil
}

func (a *app) close() error {
	if a.unsub != nil {
		a.unsub()
	}
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// runE оборачивает команду: ошибки API переводятся в понятный вид
func (a *app) runE(fn func(ctx context.Context, c *Cli, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := fn(ctx, a.cli, args); err != nil {
			// PersistentPostRunE не вызывается при ошибке RunE
			_ = a.close()
			return err
		}
		return nil
	}
}
