package admin

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"eventmap/internal/models"
)

// HTTPClient talks to the site's JSON API with the admin's session cookie.
type HTTPClient struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

// NewHTTPClient returns a client for the API at baseURL authenticating with
// the given session token.
func NewHTTPClient(baseURL, sessionID string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns the server's current address list.
func (c *HTTPClient) Fetch(ctx context.Context) ([]models.Address, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/addresses", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	var list []models.Address
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}

// Replace submits the full desired list. The server may take several seconds
// when new addresses need geocoding.
func (c *HTTPClient) Replace(ctx context.Context, list []models.Address) error {
	body, err := json.Marshal(map[string][]models.Address{"addresses": list})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/addresses", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "session", Value: c.sessionID})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("unexpected response (%s): %w", resp.Status, err)
	}
	if !envelope.Success {
		return fmt.Errorf("save rejected: %s", envelope.Message)
	}
	return nil
}
