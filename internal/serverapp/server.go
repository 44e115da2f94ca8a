package serverapp

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rorupuntou/World-IDle-sub000/internal/chain"
	"github.com/rorupuntou/World-IDle-sub000/internal/config"
	"github.com/rorupuntou/World-IDle-sub000/internal/game"
	"github.com/rorupuntou/World-IDle-sub000/internal/httpmw"
	"github.com/rorupuntou/World-IDle-sub000/internal/referral"
	"github.com/rorupuntou/World-IDle-sub000/internal/server"
	"github.com/rorupuntou/World-IDle-sub000/internal/session"
	"github.com/rorupuntou/World-IDle-sub000/internal/store"
	"github.com/rorupuntou/World-IDle-sub000/internal/telemetry"
	"github.com/rorupuntou/World-IDle-sub000/internal/worldid"
)

type Options struct {
	Config *config.Config
	Logger *log.Logger

	// Overridable collaborators; nil picks the dev/in-process default.
	Verifier  worldid.Verifier
	Submitter chain.Submitter
	Clock     game.Clock
}

// App bundles the wired server and the resources that need a shutdown.
type App struct {
	Handler  http.Handler
	Sessions *session.Manager
	Store    *store.Store

	logger *log.Logger
}

// New wires the full application: store, session manager, verification,
// chain, referral, telemetry, routes, middleware.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	cfg := opts.Config
	if strings.TrimSpace(cfg.Data.Dir) == "" {
		cfg.Data.Dir = "data"
	}
	clock := opts.Clock
	if clock == nil {
		clock = game.RealClock{}
	}

	st, err := store.Open(filepath.Join(cfg.Data.Dir, cfg.Data.DBFile))
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(st, cfg.Balance, clock, opts.Logger)
	if cfg.WorldID.DevMode {
		sessions.SetDevMode(true)
	}

	verifier := opts.Verifier
	if verifier == nil {
		if !cfg.WorldID.DevMode {
			opts.Logger.Printf("no verifier configured; falling back to dev verifier")
		}
		verifier = worldid.StaticVerifier{}
	}
	submitter := opts.Submitter
	if submitter == nil {
		submitter = chain.NewMemorySubmitter()
	}

	h := &server.Handler{
		Sessions:  sessions,
		Store:     st,
		Verifier:  verifier,
		Issuer:    worldid.NewIssuer(cfg.WorldID.ClaimSignKey, clock),
		Submitter: submitter,
		Tracker:   chain.NewTracker(),
		Referrals: referral.NewService(st, cfg.Balance, opts.Logger),
		Events:    telemetry.NewMemoryRepository(),
		Cfg:       cfg,
		Logger:    opts.Logger,
	}

	mux := http.NewServeMux()
	server.RegisterAPIRoutes(mux, h)

	handler := httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithAccessLog(opts.Logger),
	)

	return &App{
		Handler:  handler,
		Sessions: sessions,
		Store:    st,
		logger:   opts.Logger,
	}, nil
}

// Shutdown flushes every live session and closes the store.
func (a *App) Shutdown(ctx context.Context) {
	a.Sessions.CloseAll(ctx)
	if err := a.Store.Close(); err != nil {
		a.logger.Printf("close store: %v", err)
	}
}
