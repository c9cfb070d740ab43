package sdk

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is the authorization role attached to an identity.
type Role string

const (
	// RoleUser is the default role with access to the user's own records.
	RoleUser Role = "user"

	// RoleAdmin can browse every user's persons and reports.
	RoleAdmin Role = "admin"
)

// Identity is the authenticated user as returned by the server.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// LoginResult is the response to a successful login or external-token
// verification: the bearer credential plus the identity it belongs to.
type LoginResult struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// RegisterResult carries the server's confirmation message. Registration does
// not authenticate the new user.
type RegisterResult struct {
	Message string `json:"message"`
}

// RefID is a reference to another record. Some endpoints inline the full
// referenced record instead of a bare id; only the id is retained either way.
type RefID string

func (r *RefID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = RefID(s)
		return nil
	}

	var obj struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("reference is neither an id nor a record: %w", err)
	}
	if obj.MongoID != "" {
		*r = RefID(obj.MongoID)
	} else {
		*r = RefID(obj.ID)
	}
	return nil
}

func (r RefID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

// Date is a calendar day. The server accepts and returns either a plain
// YYYY-MM-DD value or a full RFC 3339 timestamp for week-of fields.
type Date struct {
	time.Time
}

// DateLayout is the wire format used when sending a Date to the server.
const DateLayout = "2006-01-02"

// NewDate builds a Date from a year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// Person is a tracked contact. The creator reference and both timestamps are
// set by the server, never by the client.
type Person struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Inviter   string    `json:"inviter"`
	Notes     string    `json:"notes"`
	CreatedBy RefID     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WeeklyReport is one outreach record logged against a person.
type WeeklyReport struct {
	ID         string    `json:"_id"`
	Person     RefID     `json:"person"`
	Contacted  bool      `json:"contacted"`
	Response   string    `json:"response"`
	WeekOf     Date      `json:"weekOf"`
	ReportedBy RefID     `json:"reportedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PersonReports is a person's report history along with the person's name for
// display.
type PersonReports struct {
	PersonName string         `json:"personName"`
	Reports    []WeeklyReport `json:"reports"`
}

// LoginInput are the credentials for a traditional login.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterInput are the credentials for a new account.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreatePersonInput are the client-provided fields of a new person. Notes is
// optional; the rest are required by the server.
type CreatePersonInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Inviter string `json:"inviter"`
	Notes   string `json:"notes"`
}

// CreateReportInput are the client-provided fields of a weekly report.
type CreateReportInput struct {
	Contacted bool   `json:"contacted"`
	Response  string `json:"response"`
	WeekOf    Date   `json:"weekOf"`
}
