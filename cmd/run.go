package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/idw-coder/quizterm/internal/api"
	"github.com/idw-coder/quizterm/internal/app"
	"github.com/idw-coder/quizterm/internal/auth"
	"github.com/idw-coder/quizterm/internal/config"
	"github.com/idw-coder/quizterm/internal/history"
	"github.com/idw-coder/quizterm/internal/localstore"
	"github.com/idw-coder/quizterm/internal/telemetry"
)

// env bundles the wired services a command runs on.
type env struct {
	cfg     *config.Config
	store   *localstore.Store
	hist    *history.Service
	auth    *auth.Manager
	catalog *api.CatalogClient
}

// bootstrap loads config, opens the local store, and wires the service
// graph. The returned cleanup closes the store and the log file.
func bootstrap(cmd *cobra.Command, logToFile bool) (*env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := localstore.EnsureDir(p); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		cfg.DBPath = p
	}

	logPath := ""
	if logToFile {
		logPath = cfg.LogPath
	}
	closeLog, err := telemetry.Init(logPath, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}

	st, err := localstore.Open(cfg.DBPath)
	if err != nil {
		// Without the local store the client still works signed-in; local
		// play just won't persist across runs.
		log.Warn().Err(err).Str("path", cfg.DBPath).Msg("local store unavailable")
		fmt.Fprintln(os.Stderr, "Warning: local store unavailable, guest history will not persist.")
		st = localstore.Discard()
	}

	client := api.NewClient(cfg.APIBaseURL, func() string {
		return st.Token(cmd.Context())
	})
	authMgr := auth.NewManager(api.NewAuthClient(client), st)

	rec := history.NewReconciler(st, api.NewHistoryClient(client))
	hist := history.NewService(rec)

	// The history source follows the session: every auth transition,
	// wherever it originates, selects the authoritative store here, and
	// a sign-in runs the local-to-account migration before the call that
	// caused the transition returns.
	authMgr.Subscribe(func(_, next auth.State) {
		if err := hist.OnAuthChange(cmd.Context(), next == auth.StateAuthenticated); err != nil {
			log.Warn().Err(err).Msg("switch history source")
		}
	})

	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("close local store")
		}
		_ = closeLog()
	}

	return &env{
		cfg:     cfg,
		store:   st,
		hist:    hist,
		auth:    authMgr,
		catalog: api.NewCatalogClient(client),
	}, cleanup, nil
}

// runApp wires everything and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, cleanup, err := bootstrap(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	e.auth.Resolve(cmd.Context())

	return app.Run(app.Options{
		History: e.hist,
		Catalog: e.catalog,
		Auth:    e.auth,
	})
}
