// Package catalog is the HTTP client for the game catalog and review service.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gametracker/internal/models"

	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

// APIError is a non-2xx answer from the service
type APIError struct {
	Status  int
	Message string
}

// Error formats the status and the server message
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog: status %d", e.Status)
	}
	return fmt.Sprintf("catalog: status %d: %s", e.Status, e.Message)
}

// Unwrap maps the status onto ErrNotFound, ErrUnauthorized or ErrBadRequest
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadRequest:
		return ErrBadRequest
	}
	return nil
}

// Client talks to the catalog service rooted at baseURL
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a Client. baseURL includes the /api prefix.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetToken sets the bearer token sent with every request
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Login exchanges the owner password for a token and keeps it for later calls
func (c *Client) Login(ctx context.Context, password string) error {
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/token", map[string]string{"password": password}, &resp); err != nil {
		return err
	}
	c.SetToken(resp.Token)
	c.logger.Info("logged in", zap.Time("expires_at", resp.ExpiresAt))
	return nil
}

// ListGames returns every game
func (c *Client) ListGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := c.do(ctx, http.MethodGet, "/games", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// GetGame returns one game by id
func (c *Client) GetGame(ctx context.Context, id string) (models.Game, error) {
	var game models.Game
	err := c.do(ctx, http.MethodGet, "/games/"+id, nil, &game)
	return game, err
}

// CreateGame stores a new game and returns it with its id
func (c *Client) CreateGame(ctx context.Context, in models.GameInput) (models.Game, error) {
	var game models.Game
	err := c.do(ctx, http.MethodPost, "/games", in, &game)
	return game, err
}

// UpdateGame replaces the fields of an existing game
func (c *Client) UpdateGame(ctx context.Context, id string, in models.GameInput) (models.Game, error) {
	var game models.Game
	err := c.do(ctx, http.MethodPut, "/games/"+id, in, &game)
	return game, err
}

// DeleteGame removes a game together with its reviews
func (c *Client) DeleteGame(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/games/"+id, nil, nil)
}

// SearchGames runs one filtered, sorted query against /games/search
func (c *Client) SearchGames(ctx context.Context, f models.SearchFilter) ([]models.Game, error) {
	var games []models.Game
	if err := c.do(ctx, http.MethodGet, "/games/search?"+f.Values().Encode(), nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// Stats returns the library summary
func (c *Client) Stats(ctx context.Context) (models.LibraryStats, error) {
	var stats models.LibraryStats
	err := c.do(ctx, http.MethodGet, "/stats", nil, &stats)
	return stats, err
}

// ListReviews returns the reviews of one game
func (c *Client) ListReviews(ctx context.Context, gameID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.do(ctx, http.MethodGet, "/reviews/game/"+gameID, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CreateReview stores a new review
func (c *Client) CreateReview(ctx context.Context, req models.CreateReviewRequest) (models.Review, error) {
	var review models.Review
	err := c.do(ctx, http.MethodPost, "/reviews", req, &review)
	return review, err
}

// UpdateReview replaces the fields of an existing review
func (c *Client) UpdateReview(ctx context.Context, id string, in models.ReviewInput) (models.Review, error) {
	var review models.Review
	err := c.do(ctx, http.MethodPut, "/reviews/"+id, in, &review)
	return review, err
}

// DeleteReview removes a review
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/reviews/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		c.logger.Warn("catalog request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
