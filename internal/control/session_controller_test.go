package control_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachworks/followup/internal/apitest"
	"github.com/outreachworks/followup/internal/control"
	"github.com/outreachworks/followup/internal/entity"
	"github.com/outreachworks/followup/internal/session"
	"github.com/outreachworks/followup/pkg/sdk"
)

// stack bundles the wired core for controller tests.
type stack struct {
	sessions *session.Store
	records  *session.FileStore
	cache    *entity.Cache
	api      *sdk.Client
	auth     *control.SessionController
	entities *control.EntityController
}

func newStack(t *testing.T, serverURL string) *stack {
	t.Helper()

	records, err := session.NewFileStoreAt(t.TempDir())
	require.NoError(t, err)
	sessions := session.NewStore(records)
	cache := entity.NewCache()
	api := sdk.NewClient(serverURL, sdk.WithCredentialSource(sessions))
	auth := control.NewSessionController(sessions, cache, api)
	entities, err := control.NewEntityController(cache, api, auth)
	require.NoError(t, err)

	return &stack{
		sessions: sessions,
		records:  records,
		cache:    cache,
		api:      api,
		auth:     auth,
		entities: entities,
	}
}

func loginOK(w http.ResponseWriter, _ *http.Request) {
	apitest.WriteJSON(w, http.StatusOK, sdk.LoginResult{
		Token: "tok1",
		User:  sdk.Identity{ID: "u1", Username: "alice", Role: sdk.RoleUser},
	})
}

func TestSessionController_Login(t *testing.T) {
	t.Run("success establishes and persists the session", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			Login: loginOK,
			ListPersons: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteJSON(w, http.StatusOK, []sdk.Person{})
			},
		})
		st := newStack(t, srv.URL)

		require.NoError(t, st.auth.Login(context.Background(), "alice", "pw"))

		s := st.sessions.Read()
		assert.True(t, s.Authenticated)
		assert.Equal(t, "tok1", s.Credential)
		require.NotNil(t, s.Identity)
		assert.Equal(t, "alice", s.Identity.Username)
		assert.False(t, s.Loading)

		// The durable record was written.
		rec, err := st.records.Load()
		require.NoError(t, err)
		assert.Equal(t, "tok1", rec.Credential)

		// The very next call carries the new credential.
		require.NoError(t, st.entities.LoadPersons(context.Background()))
		assert.Equal(t, "Bearer tok1", srv.LastAuthorization())
	})

	t.Run("failure records the server message and clears everything", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			Login: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteMessage(w, http.StatusUnauthorized, "invalid credentials")
			},
		})
		st := newStack(t, srv.URL)

		err := st.auth.Login(context.Background(), "alice", "wrong")
		require.Error(t, err)

		s := st.sessions.Read()
		assert.False(t, s.Authenticated)
		assert.Empty(t, s.Credential)
		assert.Equal(t, "invalid credentials", s.LastError)
		assert.False(t, s.Loading)

		_, recErr := st.records.Load()
		assert.ErrorIs(t, recErr, session.ErrNoRecord)
	})

	t.Run("transport failure falls back to a generic message", func(t *testing.T) {
		// A server that is not listening.
		st := newStack(t, "http://127.0.0.1:1")

		err := st.auth.Login(context.Background(), "alice", "pw")
		require.Error(t, err)

		s := st.sessions.Read()
		assert.False(t, s.Authenticated)
		assert.NotEmpty(t, s.LastError)
		assert.False(t, s.Loading)
	})
}

func TestSessionController_Register(t *testing.T) {
	t.Run("success does not authenticate", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			Register: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteJSON(w, http.StatusCreated, sdk.RegisterResult{Message: "account created"})
			},
		})
		st := newStack(t, srv.URL)

		msg, err := st.auth.Register(context.Background(), "bob", "pw")
		require.NoError(t, err)
		assert.Equal(t, "account created", msg)
		assert.False(t, st.sessions.Read().Authenticated)
	})

	t.Run("failure leaves the session untouched", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			Register: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteMessage(w, http.StatusConflict, "username taken")
			},
		})
		st := newStack(t, srv.URL)

		_, err := st.auth.Register(context.Background(), "bob", "pw")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "username taken")
		assert.Equal(t, session.Session{}, st.sessions.Read())
	})
}

func TestSessionController_LoginWithExternalIdentity(t *testing.T) {
	t.Run("verified token is treated like a login", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{VerifyExternal: loginOK})
		st := newStack(t, srv.URL)

		require.NoError(t, st.auth.LoginWithExternalIdentity(context.Background(), "assertion"))
		assert.True(t, st.sessions.Read().Authenticated)
	})

	t.Run("empty token fails locally without a network call", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{VerifyExternal: loginOK})
		st := newStack(t, srv.URL)

		err := st.auth.LoginWithExternalIdentity(context.Background(), "  ")
		require.Error(t, err)

		var vErr *control.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "idToken", vErr.Field)
		assert.Zero(t, srv.RequestCount())
		assert.False(t, st.sessions.Read().Authenticated)
		assert.NotEmpty(t, st.sessions.Read().LastError)
	})

	t.Run("rejected token clears the session", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			VerifyExternal: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteMessage(w, http.StatusUnauthorized, "token rejected")
			},
		})
		st := newStack(t, srv.URL)

		err := st.auth.LoginWithExternalIdentity(context.Background(), "bad")
		require.Error(t, err)
		assert.False(t, st.sessions.Read().Authenticated)
		assert.Equal(t, "token rejected", st.sessions.Read().LastError)
	})
}

func TestSessionController_Logout(t *testing.T) {
	srv := apitest.New(t, apitest.Handlers{
		Login: loginOK,
		ListPersons: func(w http.ResponseWriter, r *http.Request) {
			apitest.WriteJSON(w, http.StatusOK, []sdk.Person{{ID: "p1", Name: "Bob"}})
		},
	})
	st := newStack(t, srv.URL)

	require.NoError(t, st.auth.Login(context.Background(), "alice", "pw"))
	require.NoError(t, st.entities.LoadPersons(context.Background()))
	require.NotEmpty(t, st.cache.Snapshot().Persons)

	st.auth.Logout()

	assert.False(t, st.sessions.Read().Authenticated)
	assert.Empty(t, st.cache.Snapshot().Persons)
	_, err := st.records.Load()
	assert.ErrorIs(t, err, session.ErrNoRecord)

	// Idempotent.
	assert.NotPanics(t, st.auth.Logout)
	assert.False(t, st.sessions.Read().Authenticated)
}
