package mergin

import (
	"context"
	"fmt"
	"log/slog"
)

// DownloadChunk fetches one fixed-size byte range of a file at a given project
// version via a ranged GET. chunkIndex selects the range
// [i*UploadChunkSize, (i+1)*UploadChunkSize-1]; the server trims the last
// chunk to the file size.
func (c *Client) DownloadChunk(ctx context.Context, fullName, filePath, versionLabel string, chunkIndex int) ([]byte, error) {
	r, err := c.authorizedR(ctx)
	if err != nil {
		return nil, err
	}

	from := int64(chunkIndex) * UploadChunkSize
	to := from + UploadChunkSize - 1

	resp, err := r.
		SetQueryParam("file", filePath).
		SetQueryParam("version", versionLabel).
		SetHeader("Range", fmt.Sprintf("bytes=%d-%d", from, to)).
		Get("/v1/project/raw/" + fullName)

	if err := handleAPIError(resp, err, "download chunk"); err != nil {
		return nil, err
	}

	return resp.Bytes(), nil
}

// PushStart opens a push against the given base version. When the changes
// include chunked uploads the server replies with a transaction id; a
// delete-only push is applied immediately and the reply carries the metadata
// of the new version instead, preserved in Raw.
func (c *Client) PushStart(ctx context.Context, fullName string, push *PushStartRequest) (*PushStartResponse, error) {
	r, err := c.authorizedR(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := r.
		SetBody(push).
		Post("/v1/project/push/" + fullName)

	if err := handleAPIError(resp, err, "push start"); err != nil {
		return nil, err
	}

	body := resp.Bytes()
	result := &PushStartResponse{Raw: body}
	if err := jsonUnmarshal(body, result); err != nil {
		return nil, fmt.Errorf("mergin: push start reply: %w", err)
	}
	result.Raw = body

	return result, nil
}

// PushChunk uploads one chunk of a file within an open push transaction.
func (c *Client) PushChunk(ctx context.Context, transactionID, chunkID string, data []byte) error {
	r, err := c.authorizedR(ctx)
	if err != nil {
		return err
	}

	resp, err := r.
		SetContentType("application/octet-stream").
		SetBodyBytes(data).
		Post(fmt.Sprintf("/v1/project/push/chunk/%s/%s", transactionID, chunkID))

	return handleAPIError(resp, err, "push chunk")
}

// PushFinish closes a push transaction. The reply is the metadata document of
// the newly created project version, returned raw so the caller can persist
// it as the next baseline.
func (c *Client) PushFinish(ctx context.Context, transactionID string) ([]byte, error) {
	r, err := c.authorizedR(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := r.Post("/v1/project/push/finish/" + transactionID)
	if err := handleAPIError(resp, err, "push finish"); err != nil {
		return nil, err
	}

	return resp.Bytes(), nil
}

// PushCancel aborts a server-side push transaction. Best effort: failures are
// logged and swallowed because the caller is already on a teardown path.
func (c *Client) PushCancel(ctx context.Context, transactionID string) {
	r, err := c.authorizedR(ctx)
	if err != nil {
		slog.Warn("push cancel skipped", "transaction", transactionID, "error", err)
		return
	}

	resp, err := r.Post("/v1/project/push/cancel/" + transactionID)
	if err := handleAPIError(resp, err, "push cancel"); err != nil {
		slog.Warn("push cancel failed", "transaction", transactionID, "error", err)
	}
}
