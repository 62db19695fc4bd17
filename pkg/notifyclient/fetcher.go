package notifyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrAuthExpired marks an authentication-class fetch failure. The session is
// no longer valid: callers tear down local credentials and redirect to login
// instead of retrying. Any other fetch error is transient and leaves the
// cache intact.
var ErrAuthExpired = errors.New("authentication expired")

// FetchResult is one page of the notification history.
type FetchResult struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unreadCount"`
	HasMore       bool           `json:"hasMore"`
}

// Fetcher talks to the notification REST surface.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	token      string

	// OnAuthExpired runs once per auth-class failure, before the error is
	// returned. Typically wired to the session teardown.
	OnAuthExpired func()
}

// NewFetcher creates a Fetcher against baseURL (e.g. "http://api:8080/api/v1")
// authenticating with the given bearer token.
func NewFetcher(baseURL, token string) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// FetchNotifications retrieves one page, newest first.
func (f *Fetcher) FetchNotifications(ctx context.Context, page, limit int) (*FetchResult, error) {
	path := fmt.Sprintf("/notifications?page=%d&limit=%d", page, limit)
	var result FetchResult
	if err := f.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkRead marks one notification read and returns the updated unread count.
func (f *Fetcher) MarkRead(ctx context.Context, id string) (int64, error) {
	var result struct {
		UnreadCount int64 `json:"unreadCount"`
	}
	path := fmt.Sprintf("/notifications/%s/read", id)
	if err := f.doJSON(ctx, http.MethodPut, path, nil, &result); err != nil {
		return 0, err
	}
	return result.UnreadCount, nil
}

// MarkAllRead marks every notification read.
func (f *Fetcher) MarkAllRead(ctx context.Context) error {
	return f.doJSON(ctx, http.MethodPut, "/notifications/read-all", nil, nil)
}

// Delete hard-deletes one notification.
func (f *Fetcher) Delete(ctx context.Context, id string) error {
	return f.doJSON(ctx, http.MethodDelete, "/notifications/"+id, nil, nil)
}

func (f *Fetcher) doJSON(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if f.OnAuthExpired != nil {
			f.OnAuthExpired()
		}
		return ErrAuthExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		var envelope apiEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
