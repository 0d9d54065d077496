package mergin

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	ErrAuthRequired      = errors.New("mergin: credentials missing, login required")
	ErrNoAPIRoot         = errors.New("mergin: api root missing")
	ErrServerIncompatible = errors.New("mergin: incompatible server API version")
	ErrServerUnreachable  = errors.New("mergin: server not reachable")
)

// dataLimitDetail is the exact server message that should be surfaced as a
// modal dialog instead of a passive notification.
const dataLimitDetail = "You have reached a data limit"

// AuthError is returned when the server rejects login credentials.
type AuthError struct {
	Status int
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("mergin: authentication failed (%d): %s", e.Status, e.Detail)
}

// ServerError is any non-auth HTTP failure. Detail carries the server's
// user-facing message extracted from the `detail` JSON field when present.
type ServerError struct {
	Op           string
	Status       int
	Detail       string
	ShowAsDialog bool
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("mergin: %s failed (%d): %s", e.Op, e.Status, e.Detail)
}

// extractServerErrorMsg pulls the `detail` field out of a server error body.
// Falls back to the raw body when it is not the usual JSON shape.
func extractServerErrorMsg(body []byte) string {
	var doc struct {
		Detail any `json:"detail"`
	}
	if err := jsonUnmarshal(body, &doc); err != nil || doc.Detail == nil {
		return string(body)
	}

	switch v := doc.Detail.(type) {
	case string:
		return v
	default:
		raw, err := jsonMarshal(v)
		if err != nil {
			return "[can't parse server error]"
		}
		return string(raw)
	}
}

// handleAPIError turns a transport error or an error-status response into a
// typed ServerError for the given operation.
func handleAPIError(resp *req.Response, requestErr error, op string) error {
	if requestErr != nil {
		return fmt.Errorf("mergin: %s request: %w", op, requestErr)
	}

	if resp.IsErrorState() {
		detail := extractServerErrorMsg(resp.Bytes())
		return &ServerError{
			Op:           op,
			Status:       resp.StatusCode,
			Detail:       detail,
			ShowAsDialog: resp.StatusCode == 400 && detail == dataLimitDetail,
		}
	}

	return nil
}
