package client

import (
	"context"
	"fmt"
	"net/url"

	"erp-access/permissions"
	"erp-access/roleeditor"
)

var _ roleeditor.Backend = (*Client)(nil)

// Login exchanges credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp LoginResponse
	if err := c.post(ctx, "/auth/login", LoginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*CurrentUser, error) {
	var u CurrentUser
	if err := c.get(ctx, "/users/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListRoles(ctx context.Context) ([]roleeditor.Role, error) {
	var roles []roleeditor.Role
	if err := c.get(ctx, "/roles?inactive=true", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (c *Client) GetRole(ctx context.Context, id uint) (*roleeditor.Role, error) {
	var r roleeditor.Role
	if err := c.get(ctx, fmt.Sprintf("/roles/%d", id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) CreateRole(ctx context.Context, p roleeditor.Payload) (*roleeditor.Role, error) {
	var r roleeditor.Role
	if err := c.post(ctx, "/roles", p, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) UpdateRole(ctx context.Context, id uint, p roleeditor.Payload) (*roleeditor.Role, error) {
	var r roleeditor.Role
	if err := c.put(ctx, fmt.Sprintf("/roles/%d", id), p, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) DeleteRole(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/roles/%d", id))
}

// ListPermissions returns the flat permission list in ID order.
func (c *Client) ListPermissions(ctx context.Context) ([]permissions.Permission, error) {
	var perms []permissions.Permission
	if err := c.get(ctx, "/permissions", &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// PermissionTree returns every section with its areas.
func (c *Client) PermissionTree(ctx context.Context) ([]permissions.Node, error) {
	var nodes []permissions.Node
	if err := c.get(ctx, "/permissions/tree", &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (c *Client) Navigation(ctx context.Context) ([]MenuItem, error) {
	var items []MenuItem
	if err := c.get(ctx, "/navigation", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ResolveRoute asks the server which view path renders for the session.
func (c *Client) ResolveRoute(ctx context.Context, path string) (*Decision, error) {
	var d Decision
	if err := c.get(ctx, "/navigation/resolve?path="+url.QueryEscape(path), &d); err != nil {
		return nil, err
	}
	return &d, nil
}
