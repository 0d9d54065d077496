package mergin

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/merginmaps/mergin-go/internal/version"
)

var apiVersionRe = regexp.MustCompile(`(?P<major>\d+)[.](?P<minor>\d+)`)

// Ping fetches the server API version. It needs no authentication.
func (c *Client) Ping(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	resp, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&info).
		Get("/ping")

	if err := handleAPIError(resp, err, "ping"); err != nil {
		return nil, err
	}

	return &info, nil
}

// CheckVersion probes the server and records whether its API version is
// compatible with this client. The client accepts the same major with an
// equal or newer minor, and any newer major.
func (c *Client) CheckVersion(ctx context.Context) error {
	c.setStatus(ServerPending)

	info, err := c.Ping(ctx)
	if err != nil {
		c.setStatus(ServerNotFound)
		slog.Warn("server ping failed", "root", c.apiRoot, "error", err)
		return ErrServerUnreachable
	}

	major, minor := -1, -1
	if m := apiVersionRe.FindStringSubmatch(info.Version); m != nil {
		major, _ = strconv.Atoi(m[1])
		minor, _ = strconv.Atoi(m[2])
	}

	if (major == version.APIVersionMajor && minor >= version.APIVersionMinor) || major > version.APIVersionMajor {
		c.setStatus(ServerOK)
		slog.Info("server compatible", "root", c.apiRoot, "api", info.Version)
		return nil
	}

	c.setStatus(ServerIncompatible)
	slog.Warn("server incompatible", "root", c.apiRoot, "api", info.Version)
	return ErrServerIncompatible
}
