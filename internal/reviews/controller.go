// Package reviews manages the review list of one game and the create/edit
// form bound to it.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gametracker/internal/catalog"
	"gametracker/internal/confirm"
	"gametracker/internal/models"
	"gametracker/internal/notify"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSubmitInProgress is returned when Submit is called while a previous
// submission is still outstanding.
var ErrSubmitInProgress = errors.New("reviews: submit already in progress")

// Mode is the form mode
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Client is the remote surface the controller needs
type Client interface {
	GetGame(ctx context.Context, id string) (models.Game, error)
	ListReviews(ctx context.Context, gameID string) ([]models.Review, error)
	CreateReview(ctx context.Context, req models.CreateReviewRequest) (models.Review, error)
	UpdateReview(ctx context.Context, id string, in models.ReviewInput) (models.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// Controller owns the draft, the mode and the loaded reviews of one game
type Controller struct {
	gameID   string
	session  string
	client   Client
	confirms *confirm.Manager
	notifier notify.Notifier
	logger   *zap.Logger
	validate *validator.Validate

	mu         sync.Mutex
	mode       Mode
	editingID  string
	draft      Draft
	game       models.Game
	reviews    []models.Review
	loading    bool
	submitting bool
	onChange   func()
}

// NewController creates a Controller for the reviews of gameID
func NewController(gameID string, client Client, confirms *confirm.Manager, notifier notify.Notifier, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	if confirms == nil {
		confirms = confirm.NewManager(nil, 0, notifier, logger)
	}
	return &Controller{
		gameID:   gameID,
		session:  uuid.NewString(),
		client:   client,
		confirms: confirms,
		notifier: notifier,
		logger:   logger.With(zap.String("game_id", gameID)),
		validate: models.NewValidator(),
		mode:     ModeCreate,
		draft:    DefaultDraft(),
	}
}

// OnChange registers fn to be called after any state change
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// update runs fn under the lock and then notifies the view
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	onChange := c.onChange
	c.mu.Unlock()
	if onChange != nil {
		onChange()
	}
}

// GameID returns the game whose reviews are managed
func (c *Controller) GameID() string { return c.gameID }

// Mode reports whether the draft creates or edits a review
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// EditingID returns the review bound to the edit session, or "" in create mode
func (c *Controller) EditingID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editingID
}

// Draft returns a copy of the current draft
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Game returns the last loaded game
func (c *Controller) Game() models.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game
}

// Reviews returns a copy of the last loaded reviews
func (c *Controller) Reviews() []models.Review {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Review(nil), c.reviews...)
}

// Loading reports whether a load is in flight
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Submitting reports whether a submit is in flight
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// EnterEditMode binds the form to r, replacing any previous edit session
func (c *Controller) EnterEditMode(r models.Review) {
	c.update(func() {
		c.mode = ModeEdit
		c.editingID = r.ID
		c.draft = DraftFromReview(r)
	})
}

// CancelEdit returns to create mode with an empty draft
func (c *Controller) CancelEdit() {
	c.update(c.resetLocked)
}

func (c *Controller) resetLocked() {
	c.mode = ModeCreate
	c.editingID = ""
	c.draft = DefaultDraft()
}

// UpdateField sets one draft field from its text form. Rejected values raise
// an error notice and leave the draft unchanged.
func (c *Controller) UpdateField(field, value string) error {
	c.mu.Lock()
	next, err := c.draft.with(field, value)
	if err == nil {
		c.draft = next
	}
	onChange := c.onChange
	c.mu.Unlock()

	if err != nil {
		notify.Error(c.notifier, err.Error())
		return err
	}
	if onChange != nil {
		onChange()
	}
	return nil
}

// SetScore sets the draft score. Values outside 1..10 are rejected with a notice.
func (c *Controller) SetScore(score int) error {
	return c.setChecked(checkScore(score), func(d *Draft) { d.Score = score })
}

// SetText sets the draft review text
func (c *Controller) SetText(text string) {
	c.update(func() { c.draft.Text = text })
}

// SetHoursPlayed sets the draft hours. Negative values are rejected with a notice.
func (c *Controller) SetHoursPlayed(hours float64) error {
	return c.setChecked(checkHours(hours), func(d *Draft) { d.HoursPlayed = hours })
}

// SetDifficulty sets the draft difficulty. Unknown values are rejected with a notice.
func (c *Controller) SetDifficulty(diff models.Difficulty) error {
	return c.setChecked(checkDifficulty(diff), func(d *Draft) { d.Difficulty = diff })
}

// SetWouldRecommend sets the draft recommendation flag
func (c *Controller) SetWouldRecommend(rec bool) {
	c.update(func() { c.draft.WouldRecommend = rec })
}

func (c *Controller) setChecked(err error, set func(*Draft)) error {
	if err != nil {
		notify.Error(c.notifier, err.Error())
		return err
	}
	c.update(func() { set(&c.draft) })
	return nil
}

// Load fetches the game and its reviews concurrently and publishes both
// together. On failure the previous state is kept.
func (c *Controller) Load(ctx context.Context) error {
	c.update(func() { c.loading = true })

	var (
		game    models.Game
		reviews []models.Review
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		game, err = c.client.GetGame(gctx, c.gameID)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = c.client.ListReviews(gctx, c.gameID)
		return err
	})
	err := g.Wait()

	c.update(func() {
		c.loading = false
		if err == nil {
			c.game = game
			c.reviews = reviews
		}
	})
	if err != nil {
		c.logger.Warn("load reviews failed", zap.Error(err))
		notify.Error(c.notifier, "Could not load reviews.")
		return fmt.Errorf("load game %s: %w", c.gameID, err)
	}
	return nil
}

// Submit creates or updates a review from the draft. On success the form is
// reset to create mode and the game and its reviews are reloaded. On failure
// the draft and mode are left as they were.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	mode, editingID := c.mode, c.editingID
	in := c.draft.Input()
	if err := models.Validate(c.validate, in); err != nil {
		c.mu.Unlock()
		notify.Error(c.notifier, err.Error())
		return err
	}
	c.submitting = true
	onChange := c.onChange
	c.mu.Unlock()
	if onChange != nil {
		onChange()
	}

	var err error
	if mode == ModeEdit {
		_, err = c.client.UpdateReview(ctx, editingID, in)
	} else {
		_, err = c.client.CreateReview(ctx, models.CreateReviewRequest{GameID: c.gameID, ReviewInput: in})
	}

	c.update(func() {
		c.submitting = false
		if err != nil {
			return
		}
		switch {
		case mode == ModeEdit && c.mode == ModeEdit && c.editingID == editingID:
			c.resetLocked()
		case mode == ModeCreate && c.mode == ModeCreate:
			c.draft = DefaultDraft()
		}
	})
	if err != nil {
		c.logger.Warn("submit review failed", zap.String("mode", string(mode)), zap.String("review_id", editingID), zap.Error(err))
		if mode == ModeEdit && errors.Is(err, catalog.ErrNotFound) {
			c.leaveEdit(editingID)
			notify.Error(c.notifier, "This review no longer exists.")
			_ = c.Load(ctx)
			return err
		}
		notify.Error(c.notifier, "Could not save review.")
		return err
	}

	if mode == ModeEdit {
		notify.Success(c.notifier, "Review updated.")
	} else {
		notify.Success(c.notifier, "Review added.")
	}
	_ = c.Load(ctx)
	return nil
}

// RequestDelete opens a deletion prompt for review id. Confirming it deletes
// the review, leaves an edit session bound to it and reloads. A review that is
// already gone on the server also ends such an edit session.
func (c *Controller) RequestDelete(id string) *confirm.Prompt {
	return c.confirms.Request("review:"+c.session+":"+id, confirm.Deletion{
		Label: "Review",
		Delete: func(ctx context.Context) error {
			err := c.client.DeleteReview(ctx, id)
			if err != nil && !errors.Is(err, catalog.ErrNotFound) {
				return err
			}
			c.leaveEdit(id)
			if err != nil {
				_ = c.Load(ctx)
			}
			return err
		},
		Reload: c.Load,
	})
}

// leaveEdit returns to create mode if the edit session is bound to id
func (c *Controller) leaveEdit(id string) {
	c.update(func() {
		if c.mode == ModeEdit && c.editingID == id {
			c.resetLocked()
		}
	})
}
