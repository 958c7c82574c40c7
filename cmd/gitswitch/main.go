package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for token verification on minimal systems

	gitadapter "github.com/ericfisherdev/gitswitch/internal/adapter/driven/git"
	githubadapter "github.com/ericfisherdev/gitswitch/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/gitswitch/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/gitswitch/internal/adapter/driving/cli"
	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, wire)
	stop()
	os.Exit(code)
}

// wire builds the services every command runs against.
func wire(ctx context.Context, cfg *config.Config) (*cli.App, error) {
	// 1. Open the state database and bring its schema up to date.
	db, err := sqliteadapter.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	// 2. Wire driven adapters.
	blobs := sqliteadapter.NewKVRepo(db)
	secrets := sqliteadapter.NewSecretRepo(db, cfg.SecretKey)
	vcs := gitadapter.New(afero.NewOsFs(), cfg.Ignore)

	// 3. Load the identity and binding lists.
	identities := application.NewIdentityRegistry(blobs, secrets, afero.NewOsFs())
	if err := identities.Load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	bindings := application.NewBindingStore(blobs)
	if err := bindings.Load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	// 4. Wire application services.
	engine := application.NewReconciliationEngine(vcs, bindings, identities, application.NewDecisionQueue())
	discovery := application.NewDiscoveryCoordinator(vcs, cfg.ScanDepth)

	return &cli.App{
		Config:     cfg,
		VCS:        vcs,
		Identities: identities,
		Bindings:   bindings,
		Engine:     engine,
		Session:    application.NewSession(vcs, bindings, engine, discovery),
		Status:     application.NewStatusService(vcs, bindings, identities, engine),
		Verifier:   application.NewTokenVerifier(identities, githubadapter.Factory()),
		Close:      db.Close,
	}, nil
}
