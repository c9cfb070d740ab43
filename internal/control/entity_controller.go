package control

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/outreachworks/followup/internal/entity"
	"github.com/outreachworks/followup/pkg/sdk"
)

// adminPersonsCacheSize bounds the per-user admin cache; far beyond what one
// roster screen walks through in a session.
const adminPersonsCacheSize = 128

// EntityController orchestrates fetch and create operations for persons and
// reports, and owns the authorization-failure reaction: a 401/403 on an
// authenticated call is session invalidation, not a transient error.
type EntityController struct {
	cache *entity.Cache
	api   *sdk.Client
	auth  *SessionController

	// Admin-scoped results live outside the flat cache: the roster is
	// fetched once per session, persons per user lazily, fetch-once.
	adminMu      sync.Mutex
	adminUsers   []sdk.Identity
	rosterLoaded bool
	adminPersons *lru.Cache[string, []sdk.Person]
}

// NewEntityController wires the controller to the cache, gateway and session
// controller (for the forced-logout reaction).
func NewEntityController(cache *entity.Cache, api *sdk.Client, auth *SessionController) (*EntityController, error) {
	adminPersons, err := lru.New[string, []sdk.Person](adminPersonsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create admin cache: %w", err)
	}
	c := &EntityController{
		cache:        cache,
		api:          api,
		auth:         auth,
		adminPersons: adminPersons,
	}
	auth.AddResetHook(c.ForgetAdminResults)
	return c, nil
}

// Cache exposes the entity cache for read access by views.
func (c *EntityController) Cache() *entity.Cache {
	return c.cache
}

// LoadPersons replaces the cached person collection with the server's. A
// no-op when unauthenticated. An authorization failure logs the session out
// and empties the cache. A result that arrives after a newer fetch was issued
// is dropped.
func (c *EntityController) LoadPersons(ctx context.Context) error {
	if !c.auth.Sessions().Read().Authenticated {
		return nil
	}

	seq := c.cache.BeginPersonsFetch()

	persons, err := c.api.ListPersons(ctx)
	if err != nil {
		if sdk.IsAuthFailure(err) {
			c.auth.Logout()
			return fmt.Errorf("%w: %v", ErrSessionInvalidated, err)
		}
		c.cache.FailPersons(seq, sdk.ServerMessage(err, personsFetchMessage))
		return fmt.Errorf("list persons: %w", err)
	}

	c.cache.CompletePersons(seq, persons)
	return nil
}

// CreatePerson validates the required fields, creates the person, and
// prepends the server-confirmed record to the cache. On failure the error is
// recorded and the collection is left untouched.
func (c *EntityController) CreatePerson(ctx context.Context, input sdk.CreatePersonInput) (*sdk.Person, error) {
	if err := validateCreatePerson(input); err != nil {
		return nil, err
	}

	c.cache.SetLoading(true)

	person, err := c.api.CreatePerson(ctx, input)
	if err != nil {
		if sdk.IsAuthFailure(err) {
			c.auth.Logout()
			return nil, fmt.Errorf("%w: %v", ErrSessionInvalidated, err)
		}
		c.cache.SetError(sdk.ServerMessage(err, personCreateMessage))
		return nil, fmt.Errorf("create person: %w", err)
	}

	c.cache.PrependPerson(*person)
	return person, nil
}

// SubmitWeeklyReport logs one report against a person. Preconditions are
// checked locally: a person id, a non-empty response and a valid week-of
// date. The outcome is a transient notification for the caller. By contract
// the cache is not mutated on success; the history view always re-fetches.
func (c *EntityController) SubmitWeeklyReport(ctx context.Context, personID string, contacted bool, response, weekOf string) (*sdk.WeeklyReport, error) {
	if strings.TrimSpace(personID) == "" {
		return nil, &ValidationError{Field: "personId", Reason: "required"}
	}
	if strings.TrimSpace(response) == "" {
		return nil, &ValidationError{Field: "response", Reason: "required"}
	}
	day, err := sdk.ParseDate(weekOf)
	if err != nil {
		return nil, &ValidationError{Field: "weekOf", Reason: "must be a date in YYYY-MM-DD form"}
	}

	report, err := c.api.CreateReport(ctx, personID, sdk.CreateReportInput{
		Contacted: contacted,
		Response:  response,
		WeekOf:    day,
	})
	if err != nil {
		if sdk.IsAuthFailure(err) {
			c.auth.Logout()
			return nil, fmt.Errorf("%w: %v", ErrSessionInvalidated, err)
		}
		return nil, fmt.Errorf("submit report: %s: %w", sdk.ServerMessage(err, reportSubmitMessage), err)
	}

	return report, nil
}

// LoadPersonReports fetches one person's report history. A 401, 403 or 404
// comes back wrapped in ErrUnreachableView so the caller can navigate away;
// other failures are ordinary errors. The result is not cached.
func (c *EntityController) LoadPersonReports(ctx context.Context, personID string) (*sdk.PersonReports, error) {
	if strings.TrimSpace(personID) == "" {
		return nil, &ValidationError{Field: "personId", Reason: "required"}
	}

	history, err := c.api.ListPersonReports(ctx, personID)
	if err != nil {
		if sdk.IsAuthFailure(err) || sdk.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnreachableView, sdk.ServerMessage(err, historyFetchMessage))
		}
		return nil, fmt.Errorf("load report history: %w", err)
	}

	return history, nil
}

// AdminListUsers returns the users that have created records, fetched once
// per session. The role check is the access guard's job and is assumed to
// have been enforced by the caller.
func (c *EntityController) AdminListUsers(ctx context.Context) ([]sdk.Identity, error) {
	c.adminMu.Lock()
	if c.rosterLoaded {
		users := append([]sdk.Identity(nil), c.adminUsers...)
		c.adminMu.Unlock()
		return users, nil
	}
	c.adminMu.Unlock()

	users, err := c.api.AdminListUsers(ctx)
	if err != nil {
		if sdk.IsAuthFailure(err) {
			c.auth.Logout()
			return nil, fmt.Errorf("%w: %v", ErrSessionInvalidated, err)
		}
		return nil, fmt.Errorf("list users: %s: %w", sdk.ServerMessage(err, adminUsersMessage), err)
	}

	c.adminMu.Lock()
	c.adminUsers = users
	c.rosterLoaded = true
	c.adminMu.Unlock()

	return append([]sdk.Identity(nil), users...), nil
}

// AdminPersonsForUser returns one user's persons, lazily fetched and then
// reused for the session's lifetime.
func (c *EntityController) AdminPersonsForUser(ctx context.Context, userID string) ([]sdk.Person, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Field: "userId", Reason: "required"}
	}

	if persons, ok := c.adminPersons.Get(userID); ok {
		return persons, nil
	}

	persons, err := c.api.AdminListPersonsForUser(ctx, userID)
	if err != nil {
		if sdk.IsAuthFailure(err) {
			c.auth.Logout()
			return nil, fmt.Errorf("%w: %v", ErrSessionInvalidated, err)
		}
		return nil, fmt.Errorf("list persons for user %s: %s: %w", userID, sdk.ServerMessage(err, adminPersonsMessage), err)
	}

	c.adminPersons.Add(userID, persons)
	return persons, nil
}

// LoadAllReports replaces the cached admin report aggregate with the
// server's. Same sequencing and authorization policy as LoadPersons.
func (c *EntityController) LoadAllReports(ctx context.Context) error {
	if !c.auth.Sessions().Read().Authenticated {
		return nil
	}

	seq := c.cache.BeginReportsFetch()

	reports, err := c.api.AdminListAllReports(ctx)
	if err != nil {
		if sdk.IsAuthFailure(err) {
			c.auth.Logout()
			return fmt.Errorf("%w: %v", ErrSessionInvalidated, err)
		}
		c.cache.FailReports(seq, sdk.ServerMessage(err, allReportsMessage))
		return fmt.Errorf("list all reports: %w", err)
	}

	c.cache.CompleteAllReports(seq, reports)
	return nil
}

// ForgetAdminResults drops the fetch-once admin results, forcing the next
// admin view to re-fetch. Used after a new session is established.
func (c *EntityController) ForgetAdminResults() {
	c.adminMu.Lock()
	c.adminUsers = nil
	c.rosterLoaded = false
	c.adminMu.Unlock()
	c.adminPersons.Purge()
}

func validateCreatePerson(input sdk.CreatePersonInput) error {
	required := []struct {
		field string
		value string
	}{
		{"name", input.Name},
		{"phone", input.Phone},
		{"address", input.Address},
		{"inviter", input.Inviter},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Reason: "required"}
		}
	}
	return nil
}
