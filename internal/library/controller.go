// Package library drives the game list, its details view and the game
// create/edit form.
package library

import (
	"context"
	"sync"

	"gametracker/internal/confirm"
	"gametracker/internal/models"
	"gametracker/internal/notify"

	"go.uber.org/zap"
)

// Client is the remote surface of the library views
type Client interface {
	ListGames(ctx context.Context) ([]models.Game, error)
	GetGame(ctx context.Context, id string) (models.Game, error)
	CreateGame(ctx context.Context, in models.GameInput) (models.Game, error)
	UpdateGame(ctx context.Context, id string, in models.GameInput) (models.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

// Controller owns the full game list and the game shown in the details view
type Controller struct {
	client   Client
	confirms *confirm.Manager
	notifier notify.Notifier
	logger   *zap.Logger

	mu       sync.Mutex
	games    []models.Game
	loading  bool
	selected *models.Game
	onChange func()
}

// NewController creates a library Controller
func NewController(client Client, confirms *confirm.Manager, notifier notify.Notifier, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	if confirms == nil {
		confirms = confirm.NewManager(nil, 0, notifier, logger)
	}
	return &Controller{client: client, confirms: confirms, notifier: notifier, logger: logger}
}

// OnChange registers fn to be called after any state change
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	onChange := c.onChange
	c.mu.Unlock()
	if onChange != nil {
		onChange()
	}
}

// Load replaces the list with the server's. On failure the old list stays.
func (c *Controller) Load(ctx context.Context) error {
	c.update(func() { c.loading = true })

	games, err := c.client.ListGames(ctx)

	c.update(func() {
		c.loading = false
		if err == nil {
			c.games = games
		}
	})
	if err != nil {
		c.logger.Warn("list games failed", zap.Error(err))
		notify.Error(c.notifier, "Could not load games.")
		return err
	}
	return nil
}

// Games returns a copy of the last loaded list
func (c *Controller) Games() []models.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Game(nil), c.games...)
}

// Loading reports whether a refresh is in flight
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Select opens the details view for g
func (c *Controller) Select(g models.Game) {
	c.update(func() { c.selected = &g })
}

// Selected returns the game in the details view, if any
func (c *Controller) Selected() (models.Game, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return models.Game{}, false
	}
	return *c.selected, true
}

// CloseDetails closes the details view
func (c *Controller) CloseDetails() {
	c.update(func() { c.selected = nil })
}

// RequestDelete opens a deletion prompt for game id. Confirming deletes the
// game and its reviews, closes its details view and reloads the list.
func (c *Controller) RequestDelete(id string) *confirm.Prompt {
	return c.confirms.Request("game:"+id, confirm.Deletion{
		Label: "Game",
		Delete: func(ctx context.Context) error {
			if err := c.client.DeleteGame(ctx, id); err != nil {
				return err
			}
			c.update(func() {
				if c.selected != nil && c.selected.ID == id {
					c.selected = nil
				}
			})
			return nil
		},
		Reload: c.Load,
	})
}
