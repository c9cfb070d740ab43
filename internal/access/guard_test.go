package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outreachworks/followup/internal/session"
	"github.com/outreachworks/followup/pkg/sdk"
)

func newGuard(t *testing.T) (*Guard, *session.Store) {
	t.Helper()
	store := session.NewStore(nil)
	guard, err := NewGuard(store)
	require.NoError(t, err)
	return guard, store
}

func login(t *testing.T, store *session.Store, role sdk.Role) {
	t.Helper()
	require.NoError(t, store.ApplyLoginSuccess("tok1", sdk.Identity{ID: "u1", Username: "alice", Role: role}))
}

func TestGuard_Check(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, store *session.Store)
		resource string
		want     Decision
	}{
		{
			name:     "unauthenticated goes to login",
			setup:    func(t *testing.T, store *session.Store) {},
			resource: ResourcePersons,
			want:     RedirectToLogin,
		},
		{
			name: "user enters the person view",
			setup: func(t *testing.T, store *session.Store) {
				login(t, store, sdk.RoleUser)
			},
			resource: ResourcePersons,
			want:     Allow,
		},
		{
			name: "user enters the report view",
			setup: func(t *testing.T, store *session.Store) {
				login(t, store, sdk.RoleUser)
			},
			resource: ResourceReports,
			want:     Allow,
		},
		{
			name: "user is bounced from admin to the default view, not login",
			setup: func(t *testing.T, store *session.Store) {
				login(t, store, sdk.RoleUser)
			},
			resource: ResourceAdmin,
			want:     RedirectToDefault,
		},
		{
			name: "admin enters the admin view",
			setup: func(t *testing.T, store *session.Store) {
				login(t, store, sdk.RoleAdmin)
			},
			resource: ResourceAdmin,
			want:     Allow,
		},
		{
			name: "admin inherits the user views",
			setup: func(t *testing.T, store *session.Store) {
				login(t, store, sdk.RoleAdmin)
			},
			resource: ResourcePersons,
			want:     Allow,
		},
		{
			name: "unknown role is bounced to the default view",
			setup: func(t *testing.T, store *session.Store) {
				require.NoError(t, store.ApplyLoginSuccess("tok1", sdk.Identity{ID: "u1", Username: "x", Role: "intern"}))
			},
			resource: ResourcePersons,
			want:     RedirectToDefault,
		},
		{
			name: "loading session waits instead of redirecting",
			setup: func(t *testing.T, store *session.Store) {
				store.SetLoading(true)
			},
			resource: ResourcePersons,
			want:     Wait,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard, store := newGuard(t)
			tt.setup(t, store)
			assert.Equal(t, tt.want, guard.Check(tt.resource))
		})
	}
}

func TestGuard_CanEnterProtected(t *testing.T) {
	guard, store := newGuard(t)
	assert.False(t, guard.CanEnterProtected())

	login(t, store, sdk.RoleUser)
	assert.True(t, guard.CanEnterProtected())

	store.Logout()
	assert.False(t, guard.CanEnterProtected())
}

func TestGuard_CanEnterAdmin(t *testing.T) {
	guard, _ := newGuard(t)

	assert.False(t, guard.CanEnterAdmin(nil))
	assert.False(t, guard.CanEnterAdmin(&sdk.Identity{Role: sdk.RoleUser}))
	assert.True(t, guard.CanEnterAdmin(&sdk.Identity{Role: sdk.RoleAdmin}))
}
