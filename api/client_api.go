// client_api.go - API-Methoden des maskform Clients
// Eine Methode je Endpoint, alle blockierend mit Context.
package api

import (
	"context"
	"net/http"
)

// Version ruft die Server-Version ab
func (c *Client) Version(ctx context.Context) (string, error) {
	var resp VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// Heartbeat prueft ob der Server erreichbar ist
func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodHead, "/", nil, nil)
}

// Backbones listet die registrierten Backbone-Architekturen auf
func (c *Client) Backbones(ctx context.Context) (*BackbonesResponse, error) {
	var resp BackbonesResponse
	if err := c.do(ctx, http.MethodGet, "/api/backbones", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Defaults ruft die Standard-Konfiguration im config.json Format ab
func (c *Client) Defaults(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/defaults", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Show loest eine Konfiguration zu einer Zusammenfassung auf
func (c *Client) Show(ctx context.Context, req *ShowRequest) (*ShowResponse, error) {
	var resp ShowResponse
	if err := c.do(ctx, http.MethodPost, "/api/show", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate prueft mehrere Konfigurations-Maps in einem Aufruf
func (c *Client) Validate(ctx context.Context, req *ValidateRequest) (*ValidateResponse, error) {
	var resp ValidateResponse
	if err := c.do(ctx, http.MethodPost, "/api/validate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List gibt die Eintraege des lokalen Modell-Stores zurueck
func (c *Client) List(ctx context.Context) (*ListResponse, error) {
	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/models", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pull laedt eine Konfiguration vom Hub in Cache und Store
func (c *Client) Pull(ctx context.Context, req *PullRequest) (*PullResponse, error) {
	var resp PullResponse
	if err := c.do(ctx, http.MethodPost, "/api/pull", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete entfernt ein Modell aus dem Store
func (c *Client) Delete(ctx context.Context, req *DeleteRequest) error {
	return c.do(ctx, http.MethodDelete, "/api/models", req, nil)
}
