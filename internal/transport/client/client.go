package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kdramahub/kdramahub/internal/domain"
)

// Client represents an HTTP client for the catalog and room API
type Client struct {
	serverURL  string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client. The token authenticates room and
// profile operations; catalog reads work without one.
func NewClient(serverURL, token string) *Client {
	return &Client{
		serverURL: serverURL,
		token:     token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// Search queries the catalog for dramas matching query
func (c *Client) Search(ctx context.Context, query string, page int) (*domain.SearchResult, error) {
	path := fmt.Sprintf("/api/catalog/search?q=%s&page=%d", url.QueryEscape(query), page)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result domain.SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// GetDrama retrieves the detail record for one series
func (c *Client) GetDrama(ctx context.Context, slug string) (*domain.Drama, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/catalog/dramas/"+slug, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("drama '%s' not found", slug)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var drama domain.Drama
	if err := json.NewDecoder(resp.Body).Decode(&drama); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &drama, nil
}

// ListRooms retrieves all active watch-together rooms
func (c *Client) ListRooms(ctx context.Context) ([]domain.RoomSummary, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/rooms", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var rooms []domain.RoomSummary
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return rooms, nil
}

// CreateRoom creates a watch-together room for the given episode
func (c *Client) CreateRoom(ctx context.Context, slug, episode, dramaTitle, videoURL string) (*domain.CreateRoomResponse, error) {
	body := domain.CreateRoomRequest{
		Slug:       slug,
		Episode:    episode,
		DramaTitle: dramaTitle,
		VideoURL:   videoURL,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/rooms", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("unauthorized: a valid token is required to create rooms")
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result domain.CreateRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// JoinRoom joins an existing watch-together room
func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/rooms/"+roomID+"/join", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("room '%s' not found", roomID)
	case http.StatusConflict:
		return fmt.Errorf("room '%s' is full", roomID)
	default:
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
}
