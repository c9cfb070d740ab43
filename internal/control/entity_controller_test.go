package control_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachworks/followup/internal/apitest"
	"github.com/outreachworks/followup/internal/control"
	"github.com/outreachworks/followup/internal/session"
	"github.com/outreachworks/followup/pkg/sdk"
)

func loggedInStack(t *testing.T, srv *apitest.Server) *stack {
	t.Helper()
	st := newStack(t, srv.URL)
	require.NoError(t, st.sessions.ApplyLoginSuccess("tok1", sdk.Identity{ID: "u1", Username: "alice", Role: sdk.RoleUser}))
	return st
}

func TestEntityController_LoadPersons(t *testing.T) {
	t.Run("replaces the collection wholesale", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			ListPersons: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteJSON(w, http.StatusOK, []sdk.Person{{ID: "p1", Name: "Bob"}, {ID: "p2", Name: "Carol"}})
			},
		})
		st := loggedInStack(t, srv)

		require.NoError(t, st.entities.LoadPersons(context.Background()))

		v := st.cache.Snapshot()
		require.Len(t, v.Persons, 2)
		assert.False(t, v.Loading)
		assert.Empty(t, v.LastError)
	})

	t.Run("no-op when unauthenticated", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{})
		st := newStack(t, srv.URL)

		require.NoError(t, st.entities.LoadPersons(context.Background()))
		assert.Zero(t, srv.RequestCount())
	})

	t.Run("403 invalidates the session deterministically", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			ListPersons: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteMessage(w, http.StatusForbidden, "token expired")
			},
		})
		st := loggedInStack(t, srv)

		err := st.entities.LoadPersons(context.Background())
		require.ErrorIs(t, err, control.ErrSessionInvalidated)

		assert.False(t, st.sessions.Read().Authenticated)
		v := st.cache.Snapshot()
		assert.Empty(t, v.Persons)
		assert.False(t, v.Loading)

		_, recErr := st.records.Load()
		assert.ErrorIs(t, recErr, session.ErrNoRecord)
	})

	t.Run("ordinary failure records the message and clears loading", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			ListPersons: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteMessage(w, http.StatusInternalServerError, "database down")
			},
		})
		st := loggedInStack(t, srv)

		err := st.entities.LoadPersons(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, control.ErrSessionInvalidated)

		v := st.cache.Snapshot()
		assert.False(t, v.Loading)
		assert.Equal(t, "database down", v.LastError)
		assert.True(t, st.sessions.Read().Authenticated, "a transient failure must not end the session")
	})
}

func TestEntityController_CreatePerson(t *testing.T) {
	t.Run("validation failure never reaches the network", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{})
		st := loggedInStack(t, srv)

		_, err := st.entities.CreatePerson(context.Background(), sdk.CreatePersonInput{
			Name: "", Phone: "555", Address: "x", Inviter: "y",
		})

		var vErr *control.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "name", vErr.Field)
		assert.Zero(t, srv.RequestCount())
		v := st.cache.Snapshot()
		assert.Empty(t, v.Persons)
		assert.False(t, v.Loading)
		assert.Empty(t, v.LastError)
	})

	t.Run("success prepends the server-confirmed record", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			ListPersons: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteJSON(w, http.StatusOK, []sdk.Person{{ID: "p1", Name: "Bob"}})
			},
			CreatePerson: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteJSON(w, http.StatusCreated, sdk.Person{ID: "p9", Name: "Dave"})
			},
		})
		st := loggedInStack(t, srv)
		require.NoError(t, st.entities.LoadPersons(context.Background()))

		person, err := st.entities.CreatePerson(context.Background(), sdk.CreatePersonInput{
			Name: "Dave", Phone: "555", Address: "x", Inviter: "y",
		})
		require.NoError(t, err)
		assert.Equal(t, "p9", person.ID)

		v := st.cache.Snapshot()
		require.Len(t, v.Persons, 2)
		assert.Equal(t, "p9", v.Persons[0].ID, "new person goes to the front")
		assert.False(t, v.Loading)
	})

	t.Run("failure leaves the collection untouched", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			ListPersons: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteJSON(w, http.StatusOK, []sdk.Person{{ID: "p1", Name: "Bob"}})
			},
			CreatePerson: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteMessage(w, http.StatusBadRequest, "phone number is invalid")
			},
		})
		st := loggedInStack(t, srv)
		require.NoError(t, st.entities.LoadPersons(context.Background()))

		_, err := st.entities.CreatePerson(context.Background(), sdk.CreatePersonInput{
			Name: "Dave", Phone: "not-a-phone", Address: "x", Inviter: "y",
		})
		require.Error(t, err)

		v := st.cache.Snapshot()
		require.Len(t, v.Persons, 1, "collection length unchanged")
		assert.Equal(t, "p1", v.Persons[0].ID)
		assert.Equal(t, "phone number is invalid", v.LastError)
		assert.False(t, v.Loading)
	})
}

func TestEntityController_SubmitWeeklyReport(t *testing.T) {
	t.Run("local preconditions", func(t *testing.T) {
		tests := []struct {
			name      string
			personID  string
			response  string
			weekOf    string
			wantField string
		}{
			{"missing person id", "", "spoke on the phone", "2026-08-24", "personId"},
			{"empty response", "p1", "   ", "2026-08-24", "response"},
			{"missing week-of", "p1", "spoke on the phone", "", "weekOf"},
			{"invalid week-of", "p1", "spoke on the phone", "next tuesday", "weekOf"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv := apitest.New(t, apitest.Handlers{})
				st := loggedInStack(t, srv)

				_, err := st.entities.SubmitWeeklyReport(context.Background(), tt.personID, true, tt.response, tt.weekOf)

				var vErr *control.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Field)
				assert.Zero(t, srv.RequestCount(), "validation failures must not reach the network")
			})
		}
	})

	t.Run("success does not mutate the cache", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			ListPersons: func(w http.ResponseWriter, r *http.Request) {
				apitest.WriteJSON(w, http.StatusOK, []sdk.Person{{ID: "p1", Name: "Bob"}})
			},
			CreateReport: func(personID string, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "p1", personID)
				apitest.WriteJSON(w, http.StatusCreated, sdk.WeeklyReport{ID: "r1", Person: "p1"})
			},
		})
		st := loggedInStack(t, srv)
		require.NoError(t, st.entities.LoadPersons(context.Background()))
		before := st.cache.Snapshot()

		report, err := st.entities.SubmitWeeklyReport(context.Background(), "p1", true, "visited at home", "2026-08-24")
		require.NoError(t, err)
		assert.Equal(t, "r1", report.ID)

		// The history view re-fetches; the flat cache is untouched by contract.
		assert.Equal(t, before, st.cache.Snapshot())
	})
}

func TestEntityController_LoadPersonReports(t *testing.T) {
	t.Run("classifies 404 as an unreachable view", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			PersonReports: func(personID string, w http.ResponseWriter, r *http.Request) {
				apitest.WriteMessage(w, http.StatusNotFound, "person not found")
			},
		})
		st := loggedInStack(t, srv)

		_, err := st.entities.LoadPersonReports(context.Background(), "ghost")
		assert.ErrorIs(t, err, control.ErrUnreachableView)
	})

	t.Run("classifies 403 as an unreachable view without ending the session", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			PersonReports: func(personID string, w http.ResponseWriter, r *http.Request) {
				apitest.WriteMessage(w, http.StatusForbidden, "not yours")
			},
		})
		st := loggedInStack(t, srv)

		_, err := st.entities.LoadPersonReports(context.Background(), "p1")
		assert.ErrorIs(t, err, control.ErrUnreachableView)
		assert.True(t, st.sessions.Read().Authenticated)
	})

	t.Run("other failures are ordinary errors", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			PersonReports: func(personID string, w http.ResponseWriter, r *http.Request) {
				apitest.WriteMessage(w, http.StatusInternalServerError, "boom")
			},
		})
		st := loggedInStack(t, srv)

		_, err := st.entities.LoadPersonReports(context.Background(), "p1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, control.ErrUnreachableView)
	})

	t.Run("returns the person name with the history", func(t *testing.T) {
		srv := apitest.New(t, apitest.Handlers{
			PersonReports: func(personID string, w http.ResponseWriter, r *http.Request) {
				apitest.WriteJSON(w, http.StatusOK, sdk.PersonReports{
					PersonName: "Bob",
					Reports:    []sdk.WeeklyReport{{ID: "r1", Person: "p1"}},
				})
			},
		})
		st := loggedInStack(t, srv)

		history, err := st.entities.LoadPersonReports(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Bob", history.PersonName)
		assert.Len(t, history.Reports, 1)
	})
}

func TestEntityController_AdminFetchOnce(t *testing.T) {
	var rosterCalls, personCalls atomic.Int32
	srv := apitest.New(t, apitest.Handlers{
		AdminUsers: func(w http.ResponseWriter, r *http.Request) {
			rosterCalls.Add(1)
			apitest.WriteJSON(w, http.StatusOK, []sdk.Identity{{ID: "u1", Username: "alice", Role: sdk.RoleUser}})
		},
		AdminPersonsForUser: func(userID string, w http.ResponseWriter, r *http.Request) {
			personCalls.Add(1)
			apitest.WriteJSON(w, http.StatusOK, []sdk.Person{{ID: "p1", Name: "Bob"}})
		},
	})
	st := loggedInStack(t, srv)

	// Roster: fetched once, then reused.
	for i := 0; i < 3; i++ {
		users, err := st.entities.AdminListUsers(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 1)
	}
	assert.Equal(t, int32(1), rosterCalls.Load())

	// Per-user persons: lazily fetched once per user.
	for i := 0; i < 3; i++ {
		persons, err := st.entities.AdminPersonsForUser(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, persons, 1)
	}
	assert.Equal(t, int32(1), personCalls.Load())

	// A new session drops the fetch-once results.
	st.auth.Logout()
	require.NoError(t, st.sessions.ApplyLoginSuccess("tok2", sdk.Identity{ID: "u2", Username: "root", Role: sdk.RoleAdmin}))

	_, err := st.entities.AdminListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), rosterCalls.Load(), "logout must not leak admin results into the next session")
}

func TestEntityController_LoadAllReports(t *testing.T) {
	srv := apitest.New(t, apitest.Handlers{
		AllReports: func(w http.ResponseWriter, r *http.Request) {
			apitest.WriteJSON(w, http.StatusOK, []sdk.WeeklyReport{{ID: "r1"}, {ID: "r2"}})
		},
	})
	st := loggedInStack(t, srv)

	require.NoError(t, st.entities.LoadAllReports(context.Background()))

	v := st.cache.Snapshot()
	assert.Len(t, v.AllReports, 2)
	assert.False(t, v.Loading)
}
