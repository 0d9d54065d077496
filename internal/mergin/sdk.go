package mergin

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/imroc/req/v3"

	"github.com/merginmaps/mergin-go/internal/version"
)

// ServerStatus is the outcome of the API version compatibility probe.
type ServerStatus int

const (
	ServerUnknown ServerStatus = iota
	ServerPending
	ServerOK
	ServerIncompatible
	ServerNotFound
)

func (s ServerStatus) String() string {
	switch s {
	case ServerPending:
		return "pending"
	case ServerOK:
		return "ok"
	case ServerIncompatible:
		return "incompatible"
	case ServerNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// AuthState is the credential and session state owned by the client. A copy is
// handed to the OnAuthChanged hook after every change so callers can persist it.
type AuthState struct {
	Username     string
	Password     string
	UserID       int
	Token        string
	Expire       time.Time
	DiskUsage    int64
	StorageLimit int64
}

func (a *AuthState) hasCredentials() bool {
	return a.Username != "" && a.Password != ""
}

func (a *AuthState) tokenValid(now time.Time) bool {
	return a.Token != "" && a.Expire.After(now)
}

// Client is the typed HTTP client for the Mergin API. All blocking calls take
// a context; cancelling it aborts the in-flight request.
type Client struct {
	http    *req.Client
	apiRoot string

	muAuth        sync.Mutex
	auth          AuthState
	OnAuthChanged func(AuthState)

	muStatus sync.Mutex
	status   ServerStatus
}

// New creates a client for the given API root.
func New(apiRoot string) *Client {
	httpClient := req.C().
		SetBaseURL(strings.TrimSuffix(apiRoot, "/")).
		SetUserAgent("Mergin/" + version.Version).
		SetTimeout(2 * time.Minute)

	return &Client{
		http:    httpClient,
		apiRoot: apiRoot,
		status:  ServerUnknown,
	}
}

func (c *Client) APIRoot() string {
	return c.apiRoot
}

// SetCredentials stores the login used for token refresh. It does not talk to
// the server; the next authorized call logs in on demand.
func (c *Client) SetCredentials(username, password string) {
	c.muAuth.Lock()
	defer c.muAuth.Unlock()
	c.auth.Username = username
	c.auth.Password = password
}

// RestoreSession seeds a previously persisted token so the client does not
// have to log in again while it is still valid.
func (c *Client) RestoreSession(userID int, token string, expire time.Time) {
	c.muAuth.Lock()
	defer c.muAuth.Unlock()
	c.auth.UserID = userID
	c.auth.Token = token
	c.auth.Expire = expire
}

// Auth returns a snapshot of the current auth state.
func (c *Client) Auth() AuthState {
	c.muAuth.Lock()
	defer c.muAuth.Unlock()
	return c.auth
}

func (c *Client) Status() ServerStatus {
	c.muStatus.Lock()
	defer c.muStatus.Unlock()
	return c.status
}

func (c *Client) setStatus(s ServerStatus) {
	c.muStatus.Lock()
	c.status = s
	c.muStatus.Unlock()
}

// requireCompatible refuses calls once the version probe has concluded the
// server cannot be used. An unprobed server passes.
func (c *Client) requireCompatible() error {
	switch c.Status() {
	case ServerIncompatible:
		return ErrServerIncompatible
	case ServerNotFound:
		return ErrServerUnreachable
	default:
		return nil
	}
}

// ensureAuth guards authorized calls: credentials must be present, and an
// expired or missing token triggers a re-login before the caller proceeds.
func (c *Client) ensureAuth(ctx context.Context) (string, error) {
	c.muAuth.Lock()
	defer c.muAuth.Unlock()

	if !c.auth.hasCredentials() {
		return "", ErrAuthRequired
	}

	if !c.auth.tokenValid(time.Now().UTC()) {
		if err := c.loginLocked(ctx); err != nil {
			return "", err
		}
	}

	return c.auth.Token, nil
}

// authorizedR builds a request with context and Bearer token, refreshing the
// session first when needed.
func (c *Client) authorizedR(ctx context.Context) (*req.Request, error) {
	token, err := c.ensureAuth(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.requireCompatible(); err != nil {
		return nil, err
	}
	return c.http.R().SetContext(ctx).SetBearerAuthToken(token), nil
}

func (c *Client) notifyAuthChanged() {
	if c.OnAuthChanged != nil {
		c.OnAuthChanged(c.auth)
	}
}
