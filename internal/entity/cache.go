// Package entity holds the session-scoped working set of persons and reports.
// The cache is replaced wholesale by fetches and cleared whenever the session
// ends; it never outlives its owning session.
package entity

import (
	"sync"

	"github.com/outreachworks/followup/pkg/sdk"
)

// View is a read-only snapshot of the cache.
type View struct {
	Persons    []sdk.Person
	AllReports []sdk.WeeklyReport
	Loading    bool
	LastError  string
}

// Cache is the in-memory entity collection for the current session. Fetches
// are tagged with a sequence number at dispatch; a result is applied only when
// its sequence is still the latest issued for that collection, so a late
// stale response never overwrites fresher data.
type Cache struct {
	mu         sync.Mutex
	persons    []sdk.Person
	allReports []sdk.WeeklyReport
	loading    bool
	lastError  string

	personsSeq uint64
	reportsSeq uint64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Snapshot returns a copy of the current cache contents.
func (c *Cache) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Persons:    append([]sdk.Person(nil), c.persons...),
		AllReports: append([]sdk.WeeklyReport(nil), c.allReports...),
		Loading:    c.loading,
		LastError:  c.lastError,
	}
}

// BeginPersonsFetch marks a person fetch in flight: loading on, error
// cleared. The returned sequence must be passed to CompletePersons or
// FailPersons.
func (c *Cache) BeginPersonsFetch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.personsSeq++
	c.loading = true
	c.lastError = ""
	return c.personsSeq
}

// CompletePersons replaces the person collection wholesale. The result is
// dropped when a newer fetch has been issued since seq.
func (c *Cache) CompletePersons(seq uint64, persons []sdk.Person) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.personsSeq {
		return false
	}
	c.persons = append([]sdk.Person(nil), persons...)
	c.loading = false
	c.lastError = ""
	return true
}

// FailPersons records a fetch failure. Stale failures are dropped like stale
// results.
func (c *Cache) FailPersons(seq uint64, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.personsSeq {
		return false
	}
	c.loading = false
	c.lastError = message
	return true
}

// BeginReportsFetch is BeginPersonsFetch for the admin report aggregate.
func (c *Cache) BeginReportsFetch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reportsSeq++
	c.loading = true
	c.lastError = ""
	return c.reportsSeq
}

// CompleteAllReports replaces the admin report aggregate wholesale.
func (c *Cache) CompleteAllReports(seq uint64, reports []sdk.WeeklyReport) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.reportsSeq {
		return false
	}
	c.allReports = append([]sdk.WeeklyReport(nil), reports...)
	c.loading = false
	c.lastError = ""
	return true
}

// FailReports records a report-fetch failure.
func (c *Cache) FailReports(seq uint64, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.reportsSeq {
		return false
	}
	c.loading = false
	c.lastError = message
	return true
}

// PrependPerson adds a server-confirmed person to the front of the
// collection, so client-created records show most-recent-first.
func (c *Cache) PrependPerson(p sdk.Person) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persons = append([]sdk.Person{p}, c.persons...)
	c.loading = false
	c.lastError = ""
}

// SetLoading toggles the loading flag for non-fetch operations.
func (c *Cache) SetLoading(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = v
	if v {
		c.lastError = ""
	}
}

// SetError records a failure for non-fetch operations and clears loading.
func (c *Cache) SetError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.lastError = message
}

// Clear empties the cache entirely. Invoked whenever the session transitions
// to unauthenticated.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persons = nil
	c.allReports = nil
	c.loading = false
	c.lastError = ""
}
