package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// CredentialSource supplies the bearer credential attached to outbound calls.
// The client reads it fresh for every request, so a credential obtained
// mid-session applies to the very next call.
type CredentialSource interface {
	// Credential returns the current bearer token. ok is false when no
	// session is established; the request is then sent unauthenticated.
	Credential() (token string, ok bool)
}

// Client provides a typed interface to the follow-up tracker API. It is a
// transport: it attaches the credential, encodes and decodes JSON, and
// surfaces HTTP failures unchanged as *APIError. It performs no retries and
// applies no status-code policy.
type Client struct {
	baseURL   string
	http      *http.Client
	creds     CredentialSource
	userAgent string
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient       *http.Client
	CredentialSource CredentialSource
	UserAgent        string
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithCredentialSource sets the source of the bearer credential.
func WithCredentialSource(source CredentialSource) ClientOption {
	return func(opts *ClientOptions) {
		opts.CredentialSource = source
	}
}

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(ua string) ClientOption {
	return func(opts *ClientOptions) {
		opts.UserAgent = ua
	}
}

// NewClient creates a new API client that communicates with the server at
// baseURL. An http.Client is created automatically when one is not supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		baseURL:   baseURL,
		http:      opts.HTTPClient,
		creds:     opts.CredentialSource,
		userAgent: opts.UserAgent,
	}
}

// Login exchanges a username and password for a credential and identity.
func (c *Client) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account. It does not authenticate the caller.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	var out RegisterResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyExternalToken forwards an identity provider's assertion token to the
// server for verification. On success the server issues its own credential,
// treated identically to a traditional login.
func (c *Client) VerifyExternalToken(ctx context.Context, idToken string) (*LoginResult, error) {
	if idToken == "" {
		return nil, fmt.Errorf("assertion token is required")
	}
	body := map[string]string{"idToken": idToken}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/google/verify-token", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPersons returns the caller's persons. The server scopes the result to
// the credential; the client sends no role hint.
func (c *Client) ListPersons(ctx context.Context) ([]Person, error) {
	var out []Person
	if err := c.do(ctx, http.MethodGet, "/persons", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePerson creates a new person and returns the server-confirmed record.
func (c *Client) CreatePerson(ctx context.Context, input CreatePersonInput) (*Person, error) {
	var out Person
	if err := c.do(ctx, http.MethodPost, "/persons", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReport logs a weekly report against a person.
func (c *Client) CreateReport(ctx context.Context, personID string, input CreateReportInput) (*WeeklyReport, error) {
	if personID == "" {
		return nil, fmt.Errorf("person id is required")
	}
	var out WeeklyReport
	path := "/persons/" + url.PathEscape(personID) + "/report"
	if err := c.do(ctx, http.MethodPost, path, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPersonReports returns a person's report history along with the person's
// name. A 404 means the person does not exist or is not visible to the caller.
func (c *Client) ListPersonReports(ctx context.Context, personID string) (*PersonReports, error) {
	if personID == "" {
		return nil, fmt.Errorf("person id is required")
	}
	var out PersonReports
	if err := c.do(ctx, http.MethodGet, "/persons/"+url.PathEscape(personID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminListUsers lists the users that have created person records. Requires
// an admin credential.
func (c *Client) AdminListUsers(ctx context.Context) ([]Identity, error) {
	var out []Identity
	if err := c.do(ctx, http.MethodGet, "/persons/admin/users/list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminListPersonsForUser lists the persons created by one user. Requires an
// admin credential.
func (c *Client) AdminListPersonsForUser(ctx context.Context, userID string) ([]Person, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	var out []Person
	if err := c.do(ctx, http.MethodGet, "/persons/admin/users/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminListAllReports returns every user's weekly reports. Requires an admin
// credential.
func (c *Client) AdminListAllReports(ctx context.Context) ([]WeeklyReport, error) {
	var out []WeeklyReport
	if err := c.do(ctx, http.MethodGet, "/persons/reports/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do runs one request. body and out may be nil. Non-2xx responses are decoded
// into *APIError; transport failures are returned wrapped but otherwise
// untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	// Read fresh at send time, never cached at construction.
	if c.creds != nil {
		if token, ok := c.creds.Credential(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response from %s %s: %w", method, path, err)
		}
	}
	return nil
}

// decodeError builds an *APIError from a non-2xx response. The message is
// best-effort: a body that is not `{"message": ...}` yields an empty message.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
