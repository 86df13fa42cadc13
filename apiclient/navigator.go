package apiclient

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Navigator sends the user back to the login entry point once the session
// can no longer be refreshed. It is called at most once per failed refresh.
type Navigator interface {
	NavigateToLogin(ctx context.Context, loginURL string)
}

// NavigatorFunc adapts a function to a Navigator.
type NavigatorFunc func(ctx context.Context, loginURL string)

func (f NavigatorFunc) NavigateToLogin(ctx context.Context, loginURL string) {
	f(ctx, loginURL)
}

// LogNavigator only records the event. It is the default for headless use.
type LogNavigator struct {
	Log zerolog.Logger
}

func (n LogNavigator) NavigateToLogin(_ context.Context, loginURL string) {
	n.Log.Warn().Str("login_url", loginURL).Msg("session expired, login required")
}

// SessionExpired describes a forced logout.
type SessionExpired struct {
	Cause    error
	LoginURL string
	At       time.Time
}

// OnSessionExpired registers fn to run on every forced logout, before the
// navigator. It lets a caller flush unsaved work. The returned function
// removes the registration.
func (c *Client) OnSessionExpired(fn func(SessionExpired)) func() {
	c.expiredMu.Lock()
	defer c.expiredMu.Unlock()
	id := c.nextExpiredID
	c.nextExpiredID++
	c.expiredSubs[id] = fn
	return func() {
		c.expiredMu.Lock()
		defer c.expiredMu.Unlock()
		delete(c.expiredSubs, id)
	}
}

func (c *Client) publishExpired(ev SessionExpired) {
	c.expiredMu.Lock()
	fns := make([]func(SessionExpired), 0, len(c.expiredSubs))
	for _, fn := range c.expiredSubs {
		fns = append(fns, fn)
	}
	c.expiredMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
