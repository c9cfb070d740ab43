// Package client wires the session store, entity cache, gateway and
// controllers together for the CLI. Construction is lazy and happens once per
// process.
package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/outreachworks/followup/internal/access"
	"github.com/outreachworks/followup/internal/control"
	"github.com/outreachworks/followup/internal/entity"
	"github.com/outreachworks/followup/internal/session"
	"github.com/outreachworks/followup/pkg/sdk"
)

// Provider yields the wired core backed by the durable session record.
type Provider struct {
	serverURL   string
	bearerToken string // ephemeral token that bypasses the session record (for testing/CI)

	once sync.Once
	err  error

	sessions *session.Store
	cache    *entity.Cache
	api      *sdk.Client
	auth     *control.SessionController
	entities *control.EntityController
	guard    *access.Guard
}

// NewProvider constructs a new Provider bound to the given server URL.
func NewProvider(serverURL string) *Provider {
	return &Provider{serverURL: serverURL}
}

// SetBearerToken injects an ephemeral bearer token that is attached to every
// call without touching the durable session record.
func (p *Provider) SetBearerToken(token string) {
	p.bearerToken = token
}

func (p *Provider) build() {
	if p.bearerToken != "" {
		// In-memory session only: the ephemeral token must not disturb the
		// record on disk. Identity comes from the token's own claims so the
		// guard can still gate views.
		p.sessions = session.NewStore(nil)
		identity := sdk.Identity{Username: "token", Role: sdk.RoleUser}
		if id, ok := session.CredentialIdentity(p.bearerToken); ok {
			identity = *id
		}
		_ = p.sessions.ApplyLoginSuccess(p.bearerToken, identity)
	} else {
		records, err := session.NewFileStore()
		if err != nil {
			p.err = fmt.Errorf("failed to create session store: %w", err)
			return
		}
		p.sessions = session.NewStore(records)
	}
	p.cache = entity.NewCache()

	// With an ephemeral token the HTTP layer carries the credential; the
	// session store stays out of the loop so the record on disk is untouched.
	httpClient := http.DefaultClient
	if p.bearerToken != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: p.bearerToken,
			TokenType:   "Bearer",
		})
		httpClient = oauth2.NewClient(context.Background(), source)
	}

	p.api = sdk.NewClient(p.serverURL,
		sdk.WithHTTPClient(httpClient),
		sdk.WithCredentialSource(p.sessions),
		sdk.WithUserAgent("followctl"),
	)

	p.auth = control.NewSessionController(p.sessions, p.cache, p.api)
	p.entities, p.err = control.NewEntityController(p.cache, p.api, p.auth)
	if p.err != nil {
		return
	}
	p.guard, p.err = access.NewGuard(p.sessions)
}

func (p *Provider) ensure() error {
	p.once.Do(p.build)
	return p.err
}

// Sessions returns the session store.
func (p *Provider) Sessions() (*session.Store, error) {
	if err := p.ensure(); err != nil {
		return nil, err
	}
	return p.sessions, nil
}

// SessionController returns the session controller.
func (p *Provider) SessionController() (*control.SessionController, error) {
	if err := p.ensure(); err != nil {
		return nil, err
	}
	return p.auth, nil
}

// EntityController returns the entity controller.
func (p *Provider) EntityController() (*control.EntityController, error) {
	if err := p.ensure(); err != nil {
		return nil, err
	}
	return p.entities, nil
}

// Guard returns the access guard.
func (p *Provider) Guard() (*access.Guard, error) {
	if err := p.ensure(); err != nil {
		return nil, err
	}
	return p.guard, nil
}
