package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/linkpage/pkg/adapters/remote"
	"github.com/wadjakorntonsri/linkpage/pkg/adapters/repository/sqlstore"
	"github.com/wadjakorntonsri/linkpage/pkg/core/services"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

type options struct {
	db      string
	server  string
	token   string
	email   string
	verbose bool
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()
	opts := &options{}

	root := &cobra.Command{
		Use:           "linkpage",
		Short:         "Manage linkpage landing pages from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.db, "db", envOr("DATABASE_URL", "file:db.sqlite"), "database URL (sqlite path, libsql:// or postgres://)")
	flags.StringVar(&opts.server, "server", os.Getenv("LINKPAGE_SERVER"), "API base URL; when set, links commands go through the API")
	flags.StringVar(&opts.token, "token", os.Getenv("LINKPAGE_TOKEN"), "session token for --server")
	flags.StringVar(&opts.email, "email", os.Getenv("LINKPAGE_EMAIL"), "owner email for direct database access")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newMigrateCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newLinksCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *options) logger() *logger.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true, Writer: os.Stderr})
	if err != nil {
		return logger.Nop()
	}
	return log
}

// openStore opens and migrates the database named by --db.
func (o *options) openStore(ctx context.Context) (*sqlstore.Store, error) {
	store, err := sqlstore.Open(ctx, o.db, o.logger())
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// ownerID resolves --email to a profile id.
func (o *options) ownerID(ctx context.Context, profiles ports.ProfileRepository) (string, error) {
	if o.email == "" {
		return "", errors.New("--email is required for direct database access")
	}
	p, err := profiles.GetProfileByEmail(ctx, o.email)
	if err != nil {
		return "", fmt.Errorf("owner %s: %w", o.email, err)
	}
	return p.ID, nil
}

// linkStore returns the capability the link manager drives: the API client
// when --server is set, otherwise the local service.
func (o *options) linkStore(ctx context.Context) (store ports.LinkStore, ownerID string, closeFn func() error, err error) {
	if o.server != "" {
		if o.token == "" {
			return nil, "", nil, errors.New("--token is required with --server")
		}
		return remote.New(o.server, o.token), "", func() error { return nil }, nil
	}

	db, err := o.openStore(ctx)
	if err != nil {
		return nil, "", nil, err
	}
	ownerID, err = o.ownerID(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, "", nil, err
	}
	return services.NewLinkService(db, db, nil, o.logger()), ownerID, db.Close, nil
}
