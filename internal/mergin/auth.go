package mergin

import (
	"context"
	"fmt"
	"log/slog"
)

const authLogin = "/v1/auth/login"

// Login authenticates with the given credentials and stores the session
// token. On a 401/400 reply the stored credentials are cleared and an
// AuthError is returned.
func (c *Client) Login(ctx context.Context, username, password string) error {
	c.muAuth.Lock()
	defer c.muAuth.Unlock()

	c.auth.Username = username
	c.auth.Password = password
	return c.loginLocked(ctx)
}

// loginLocked performs the login round-trip. Callers hold muAuth.
func (c *Client) loginLocked(ctx context.Context) error {
	var loginResp LoginResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&LoginRequest{Login: c.auth.Username, Password: c.auth.Password}).
		SetSuccessResult(&loginResp).
		Post(authLogin)

	if err != nil {
		return fmt.Errorf("mergin: login request: %w", err)
	}

	if resp.IsErrorState() {
		detail := extractServerErrorMsg(resp.Bytes())
		slog.Warn("login failed", "status", resp.StatusCode, "detail", detail)

		if resp.StatusCode == 401 || resp.StatusCode == 400 {
			c.auth = AuthState{}
			c.notifyAuthChanged()
			return &AuthError{Status: resp.StatusCode, Detail: detail}
		}
		return &ServerError{Op: "login", Status: resp.StatusCode, Detail: detail}
	}

	c.auth.Token = loginResp.Session.Token
	c.auth.Expire = loginResp.ExpireTime()
	c.auth.UserID = loginResp.ID
	c.auth.DiskUsage = loginResp.DiskUsage
	c.auth.StorageLimit = loginResp.StorageLimit
	if loginResp.Username != "" {
		c.auth.Username = loginResp.Username
	}
	c.notifyAuthChanged()

	slog.Info("logged in", "user", c.auth.Username, "expire", c.auth.Expire)
	return nil
}

// UserProfile fetches the storage usage for a user.
func (c *Client) UserProfile(ctx context.Context, username string) (*UserInfo, error) {
	r, err := c.authorizedR(ctx)
	if err != nil {
		return nil, err
	}

	var info UserInfo
	resp, err := r.
		SetSuccessResult(&info).
		Get("/v1/user/" + username)

	if err := handleAPIError(resp, err, "user info"); err != nil {
		return nil, err
	}

	return &info, nil
}
