package control

import (
	"context"
	"fmt"
	"strings"

	"github.com/outreachworks/followup/internal/entity"
	"github.com/outreachworks/followup/internal/session"
	"github.com/outreachworks/followup/pkg/sdk"
)

// SessionController turns credential-acquisition events into session store
// mutations. It is the only writer of the session store.
type SessionController struct {
	sessions *session.Store
	cache    *entity.Cache
	api      *sdk.Client

	// resetHooks run whenever the session changes hands: logout, login
	// failure, or a newly established session. Session-scoped caches outside
	// the flat entity cache register here.
	resetHooks []func()
}

// NewSessionController wires the controller to its stores and gateway.
func NewSessionController(sessions *session.Store, cache *entity.Cache, api *sdk.Client) *SessionController {
	return &SessionController{
		sessions: sessions,
		cache:    cache,
		api:      api,
	}
}

// Sessions exposes the store for read access by views and guards.
func (c *SessionController) Sessions() *session.Store {
	return c.sessions
}

// AddResetHook registers fn to run whenever the session changes hands.
func (c *SessionController) AddResetHook(fn func()) {
	c.resetHooks = append(c.resetHooks, fn)
}

func (c *SessionController) runResetHooks() {
	for _, fn := range c.resetHooks {
		fn()
	}
}

// Login authenticates with a username and password. On success the session is
// established and durably persisted; on failure the session is reset and the
// failure message recorded. Loading is cleared on every path.
func (c *SessionController) Login(ctx context.Context, username, password string) error {
	c.sessions.SetLoading(true)
	c.sessions.ClearError()
	defer c.sessions.SetLoading(false)

	res, err := c.api.Login(ctx, sdk.LoginInput{Username: username, Password: password})
	if err != nil {
		c.invalidate(sdk.ServerMessage(err, loginFailedMessage))
		return fmt.Errorf("login: %w", err)
	}

	return c.applyLogin(res)
}

// Register creates a new account. It does not authenticate the caller; on
// success the caller is expected to switch to the login flow. The session
// store is never touched.
func (c *SessionController) Register(ctx context.Context, username, password string) (string, error) {
	res, err := c.api.Register(ctx, sdk.RegisterInput{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("register: %s: %w", sdk.ServerMessage(err, registerFailedMessage), err)
	}
	return res.Message, nil
}

// LoginWithExternalIdentity forwards an identity provider's assertion token
// to the server. A missing token is an immediate local failure; no network
// call is made. A verified token is treated identically to a traditional
// login.
func (c *SessionController) LoginWithExternalIdentity(ctx context.Context, assertionToken string) error {
	if strings.TrimSpace(assertionToken) == "" {
		c.invalidate(missingTokenMessage)
		return &ValidationError{Field: "idToken", Reason: "required"}
	}

	c.sessions.SetLoading(true)
	c.sessions.ClearError()
	defer c.sessions.SetLoading(false)

	res, err := c.api.VerifyExternalToken(ctx, assertionToken)
	if err != nil {
		c.invalidate(sdk.ServerMessage(err, loginFailedMessage))
		return fmt.Errorf("verify external identity: %w", err)
	}

	return c.applyLogin(res)
}

// Logout is unconditional and never fails: the session always ends
// unauthenticated and the entity cache always ends empty, in that order.
func (c *SessionController) Logout() {
	c.sessions.Logout()
	c.cache.Clear()
	c.runResetHooks()
}

// invalidate is the login-failure variant of Logout: same zero state, but the
// triggering message stays visible until the next action.
func (c *SessionController) invalidate(message string) {
	c.sessions.ApplyLoginFailure(message)
	c.cache.Clear()
	c.runResetHooks()
}

func (c *SessionController) applyLogin(res *sdk.LoginResult) error {
	// A fresh session must not see the previous session's cached entities.
	c.cache.Clear()
	c.runResetHooks()

	if err := c.sessions.ApplyLoginSuccess(res.Token, res.User); err != nil {
		// The in-memory session is established; only persistence failed. The
		// session will not survive a restart, which the caller may report.
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
