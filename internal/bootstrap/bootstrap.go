// Package bootstrap assembles the client side of the system from
// configuration: logger, session repo, session store, API client and metrics.
package bootstrap

import (
	"context"
	"io"
	"net/http"

	"github.com/jrsteele09/go-condo-client/apiclient"
	"github.com/jrsteele09/go-condo-client/internal/config"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/sessions"
	"github.com/jrsteele09/go-condo-client/sessions/filerepo"
	"github.com/jrsteele09/go-condo-client/sessions/redisrepo"
	"github.com/jrsteele09/go-condo-client/sessions/sqliterepo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

type App struct {
	Config   config.Config
	Log      zerolog.Logger
	Repo     sessions.Repo
	Store    *sessions.Store
	Client   *apiclient.Client
	Metrics  *apiclient.Metrics
	Registry *prometheus.Registry

	closers []io.Closer
}

// New wires the client stack. navigator may be nil, in which case forced
// logouts are only logged. Extra client options are applied last.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger, navigator apiclient.Navigator, opts ...apiclient.Option) (*App, error) {
	app := &App{Config: cfg, Log: log, Registry: prometheus.NewRegistry()}

	repo, closer, err := NewSessionRepo(ctx, cfg)
	if err != nil {
		return nil, errs.Wrapf(err, "[bootstrap New] failed to open session storage")
	}
	app.Repo = repo
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	app.Store, err = sessions.NewStore(ctx, repo, log)
	if err != nil {
		app.Close()
		return nil, errs.Wrapf(err, "[bootstrap New] failed to load session")
	}

	app.Metrics = apiclient.NewMetrics(app.Registry)
	clientOpts := []apiclient.Option{apiclient.WithLogger(log), apiclient.WithMetrics(app.Metrics)}
	if navigator != nil {
		clientOpts = append(clientOpts, apiclient.WithNavigator(navigator))
	}
	app.Client = apiclient.NewFromConfig(cfg, app.Store, append(clientOpts, opts...)...)

	log.Debug().
		Str("api", app.Client.BaseURL()).
		Str("session_store", string(cfg.GetSessionStore())).
		Bool("authenticated", app.Store.Snapshot().IsAuthenticated).
		Msg("client ready")
	return app, nil
}

// NewSessionRepo opens the backend selected by CONDO_SESSION_STORE. The
// returned closer is nil for backends holding no connection.
func NewSessionRepo(ctx context.Context, cfg config.StorageConfig) (sessions.Repo, io.Closer, error) {
	switch cfg.GetSessionStore() {
	case config.SQLiteStorage:
		repo, err := sqliterepo.Open(ctx, cfg.GetSQLitePath())
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	case config.RedisStorage:
		repo, err := redisrepo.Dial(ctx, cfg.GetRedisURL(), cfg.GetRedisPassword(), "")
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	default:
		return filerepo.New(cfg.GetSessionFile()), nil, nil
	}
}

// HTTPClient returns a plain HTTP client that sends the session's current
// access token on every request. It does not refresh or log out on 401; use
// Client for API calls and this for raw requests.
func (a *App) HTTPClient() *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{Source: a.Store.TokenSource()},
		Timeout:   a.Config.GetHTTPTimeout(),
	}
}

// Close releases storage connections.
func (a *App) Close() error {
	var closeErrs []error
	for _, c := range a.closers {
		closeErrs = append(closeErrs, c.Close())
	}
	a.closers = nil
	return errs.Join(closeErrs...)
}
