package mergin

import (
	"context"
	"fmt"
)

// ListProjects fetches the projects visible to the current user, optionally
// filtered by tags, a search expression or an access flag.
func (c *Client) ListProjects(ctx context.Context, params *ListProjectsParams) ([]ProjectListEntry, error) {
	r, err := c.authorizedR(ctx)
	if err != nil {
		return nil, err
	}

	if params != nil {
		if params.Tags != "" {
			r.SetQueryParam("tags", params.Tags)
		}
		if params.Search != "" {
			r.SetQueryParam("q", params.Search)
		}
		if params.Flag != "" {
			r.SetQueryParam("flag", params.Flag)
			r.SetQueryParam("user", params.User)
		}
	}

	var projects []ProjectListEntry
	resp, err := r.
		SetSuccessResult(&projects).
		Get("/v1/project")

	if err := handleAPIError(resp, err, "list projects"); err != nil {
		return nil, err
	}

	return projects, nil
}

// ProjectInfo fetches the current metadata document for namespace/name. The
// raw body is returned so it can be persisted verbatim as the local baseline.
func (c *Client) ProjectInfo(ctx context.Context, fullName string) ([]byte, error) {
	r, err := c.authorizedR(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := r.Get("/v1/project/" + fullName)
	if err := handleAPIError(resp, err, "project info"); err != nil {
		return nil, err
	}

	return resp.Bytes(), nil
}

// CreateProject creates a new private project in the namespace.
func (c *Client) CreateProject(ctx context.Context, namespace, name string) error {
	r, err := c.authorizedR(ctx)
	if err != nil {
		return err
	}

	resp, err := r.
		SetBody(map[string]any{"name": name, "public": false}).
		Post("/v1/project/" + namespace)

	return handleAPIError(resp, err, "create project")
}

// DeleteProject removes a project from the server.
func (c *Client) DeleteProject(ctx context.Context, namespace, name string) error {
	r, err := c.authorizedR(ctx)
	if err != nil {
		return err
	}

	resp, err := r.Delete(fmt.Sprintf("/v1/project/%s/%s", namespace, name))
	return handleAPIError(resp, err, "delete project")
}
