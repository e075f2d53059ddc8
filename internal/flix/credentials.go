package flix

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// expiryMargin is how long before expiry a credential is already considered
// stale. The margin guarantees no multi-step operation (such as an export
// poll loop) crosses expiry mid-flight.
const expiryMargin = 2 * time.Hour

// expiryLayout parses the server's expiry_date field after any fractional
// seconds or timezone suffix has been truncated at the first dot.
const expiryLayout = "2006-01-02T15:04:05"

// Credential is a time-limited signing credential issued by the server.
// It is replaced wholesale on re-authentication, never partially mutated.
type Credential struct {
	AccessKeyID     string
	SecretAccessKey string
	ExpiresAt       time.Time
}

// usableAt reports whether the credential is still good for request signing
// at the given instant.
func (c Credential) usableAt(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Add(expiryMargin).After(c.ExpiresAt)
}

// Credentials owns the current signing credential and the login data needed
// to replace it. It is safe for concurrent use; a refresh in flight is never
// duplicated by a second caller observing the same stale credential.
type Credentials struct {
	httpc *http.Client
	now   func() time.Time

	mu       sync.Mutex
	hostname string
	login    string
	password string
	current  *Credential
}

// NewCredentials builds a credential manager using the given HTTP client for
// authentication calls.
func NewCredentials(httpc *http.Client) *Credentials {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Credentials{httpc: httpc, now: time.Now}
}

// Authenticate performs a Basic-auth login against hostname and stores both
// the resulting credential and the login data for later transparent
// refreshes. On failure any previously held state is left untouched.
func (c *Credentials) Authenticate(ctx context.Context, hostname, login, password string) (Credential, error) {
	cred, err := c.fetchCredential(ctx, hostname, login, password)
	if err != nil {
		return Credential{}, err
	}

	c.mu.Lock()
	c.hostname = hostname
	c.login = login
	c.password = password
	c.current = &cred
	c.mu.Unlock()

	return cred, nil
}

// Reset clears all held state: hostname, login, password, and credential.
func (c *Credentials) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hostname = ""
	c.login = ""
	c.password = ""
	c.current = nil
}

// validCredential returns a (key, secret) pair that is guaranteed usable for
// at least the expiry margin, re-authenticating first when the held
// credential is missing or stale. Refresh runs under the manager lock so
// concurrent callers trigger at most one authentication call.
func (c *Credentials) validCredential(ctx context.Context) (key, secret string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.usableAt(c.now()) {
		return c.current.AccessKeyID, c.current.SecretAccessKey, nil
	}

	if c.hostname == "" || c.login == "" {
		return "", "", fmt.Errorf("%w: not logged in", ErrAuthenticationFailed)
	}

	cred, err := c.fetchCredential(ctx, c.hostname, c.login, c.password)
	if err != nil {
		return "", "", err
	}
	c.current = &cred
	return cred.AccessKeyID, cred.SecretAccessKey, nil
}

// authResponse mirrors the /authenticate payload.
type authResponse struct {
	ID              string `json:"id"`
	SecretAccessKey string `json:"secret_access_key"`
	ExpiryDate      string `json:"expiry_date"`
}

func (c *Credentials) fetchCredential(ctx context.Context, hostname, login, password string) (Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hostname+"/authenticate", nil)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: create request: %v", ErrAuthenticationFailed, err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(login + ":" + password))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Credential{}, fmt.Errorf("%w: server returned status %d", ErrAuthenticationFailed, resp.StatusCode)
	}

	var payload authResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Credential{}, fmt.Errorf("%w: decode response: %v", ErrAuthenticationFailed, err)
	}
	return credentialFromAuth(payload)
}

func credentialFromAuth(payload authResponse) (Credential, error) {
	if payload.ID == "" || payload.SecretAccessKey == "" || payload.ExpiryDate == "" {
		return Credential{}, fmt.Errorf("%w: response missing id, secret, or expiry", ErrAuthenticationFailed)
	}
	trimmed, _, _ := strings.Cut(payload.ExpiryDate, ".")
	expires, err := time.Parse(expiryLayout, trimmed)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: parse expiry %q: %v", ErrAuthenticationFailed, payload.ExpiryDate, err)
	}
	return Credential{
		AccessKeyID:     payload.ID,
		SecretAccessKey: payload.SecretAccessKey,
		ExpiresAt:       expires,
	}, nil
}
