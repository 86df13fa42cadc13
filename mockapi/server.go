// Package mockapi is an in-memory stand-in for the condominium API. It issues
// real signed tokens, rotates refresh tokens and enforces bearer auth, so the
// client's refresh path can be exercised end to end in development and tests.
package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-condo-client/internal/config"
	"github.com/jrsteele09/go-condo-client/mockapi/refresh"
	"github.com/jrsteele09/go-condo-client/services/ai"
	"github.com/jrsteele09/go-condo-client/services/commonareas"
	"github.com/jrsteele09/go-condo-client/services/documents"
	"github.com/jrsteele09/go-condo-client/services/imports"
	"github.com/jrsteele09/go-condo-client/services/notifications"
	"github.com/jrsteele09/go-condo-client/services/reservations"
	"github.com/jrsteele09/go-condo-client/services/units"
	"github.com/rs/zerolog"
)

type Server struct {
	env    string // "DEV" logs every route and request
	mux    *http.ServeMux
	routes []string
	log    zerolog.Logger

	users   *userRepo
	tokens  *tokenCreator
	refresh *refresh.Manager

	units         *table[units.Unit]
	areas         *table[commonareas.CommonArea]
	reservations  *table[reservations.Reservation]
	notifications *table[notifications.Notification]
	documents     *table[documents.Document]
	files         *table[[]byte]
	imports       *table[imports.Job]
	conversations *table[ai.Conversation]
	messages      *table[[]ai.Message]

	skipSeed bool

	hitsMu sync.Mutex
	hits   map[string]int
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithEnv sets the environment name; "DEV" turns on route logging.
func WithEnv(env string) Option {
	return func(s *Server) { s.env = env }
}

// WithoutSeed starts with no accounts or data.
func WithoutSeed() Option {
	return func(s *Server) { s.skipSeed = true }
}

func New(cfg config.MockAPIConfig, opts ...Option) (*Server, error) {
	s := &Server{
		mux:           http.NewServeMux(),
		log:           zerolog.Nop(),
		users:         newUserRepo(),
		tokens:        newTokenCreator(cfg),
		refresh:       refresh.NewManager(refresh.NewInMemoryRepo(), cfg),
		units:         newTable[units.Unit](),
		areas:         newTable[commonareas.CommonArea](),
		reservations:  newTable[reservations.Reservation](),
		notifications: newTable[notifications.Notification](),
		documents:     newTable[documents.Document](),
		files:         newTable[[]byte](),
		imports:       newTable[imports.Job](),
		conversations: newTable[ai.Conversation](),
		messages:      newTable[[]ai.Message](),
		hits:          make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "mockapi").Logger()

	if !s.skipSeed {
		if err := s.seed(); err != nil {
			return nil, fmt.Errorf("[mockapi New] failed to seed data: %w", err)
		}
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

// Hits reports how many requests matched pattern, e.g. "POST /api/v1/auth/refresh".
func (s *Server) Hits(pattern string) int {
	s.hitsMu.Lock()
	defer s.hitsMu.Unlock()
	return s.hits[pattern]
}

// ExpireAccessTokens makes every access token issued so far fail with 401.
// Refresh tokens keep working.
func (s *Server) ExpireAccessTokens() {
	s.tokens.expireAll()
	s.log.Debug().Msg("access tokens expired")
}

// RevokeRefreshTokens makes every outstanding refresh token unusable.
func (s *Server) RevokeRefreshTokens() error {
	s.log.Debug().Msg("refresh tokens revoked")
	return s.refresh.RevokeAll()
}

// AddUser creates or replaces an account.
func (s *Server) AddUser(u UserSeed) error {
	_, err := s.users.Upsert(u.User, u.Password)
	return err
}

func (s *Server) countHit(pattern string) {
	s.hitsMu.Lock()
	defer s.hitsMu.Unlock()
	s.hits[pattern]++
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1], 0)
		} else {
			s.logRoute("", parts[0], 0)
		}
	}
}

func (s *Server) logRoute(method, path string, status int) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	displayMethod := gray + paddedMethod + resetColor
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + resetColor
	}
	if status == 0 {
		s.log.Info().Msgf("[%-19s] %s", displayMethod, path)
		return
	}
	s.log.Info().Msgf("[%-19s] %s %s%d%s", displayMethod, path, statusColor(status), status, resetColor)
}
