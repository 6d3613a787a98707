package library

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"gametracker/internal/models"
	"gametracker/internal/notify"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Form field names accepted by Form.UpdateField
const (
	FieldTitle       = "title"
	FieldGenre       = "genre"
	FieldPlatform    = "platform"
	FieldReleaseYear = "releaseYear"
	FieldDeveloper   = "developer"
	FieldCoverImage  = "coverImage"
	FieldDescription = "description"
	FieldCompleted   = "completed"
)

// Form is the create/edit game form
type Form struct {
	client   Client
	notifier notify.Notifier
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	mu         sync.Mutex
	id         string
	fields     models.GameInput
	submitting bool
}

// NewForm returns a form in create mode with default fields
func NewForm(client Client, notifier notify.Notifier, logger *zap.Logger) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	f := &Form{
		client:   client,
		notifier: notifier,
		logger:   logger,
		validate: models.NewValidator(),
		now:      time.Now,
	}
	f.fields = f.defaults()
	return f
}

func (f *Form) defaults() models.GameInput {
	return models.GameInput{
		Genre:       models.GenreAction,
		Platform:    models.PlatformPC,
		ReleaseYear: f.now().Year(),
	}
}

// Editing reports whether the form edits an existing game
func (f *Form) Editing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id != ""
}

// GameID returns the id of the edited game, or "" when creating
func (f *Form) GameID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

// Fields returns a copy of the draft
func (f *Form) Fields() models.GameInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Reset returns the form to create mode with default fields
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = ""
	f.fields = f.defaults()
}

// Load switches the form to edit game id and fills it from the server.
// Missing genre, platform or year fall back to the create defaults.
func (f *Form) Load(ctx context.Context, id string) error {
	game, err := f.client.GetGame(ctx, id)
	if err != nil {
		f.logger.Warn("load game failed", zap.String("game_id", id), zap.Error(err))
		notify.Error(f.notifier, "Could not load game.")
		return err
	}

	in := models.InputFromGame(game)
	def := f.defaults()
	if !in.Genre.Valid() {
		in.Genre = def.Genre
	}
	if !in.Platform.Valid() {
		in.Platform = def.Platform
	}
	if in.ReleaseYear == 0 {
		in.ReleaseYear = def.ReleaseYear
	}

	f.mu.Lock()
	f.id = game.ID
	f.fields = in
	f.mu.Unlock()
	return nil
}

// UpdateField sets one field from its text form. Only the year and the
// completed flag are parsed here; everything else is checked on Submit.
// A rejected value raises an error notice and leaves the draft unchanged.
func (f *Form) UpdateField(field, value string) error {
	if err := f.setField(field, value); err != nil {
		notify.Error(f.notifier, err.Error())
		return err
	}
	return nil
}

func (f *Form) setField(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldTitle:
		f.fields.Title = value
	case FieldGenre:
		f.fields.Genre = models.Genre(value)
	case FieldPlatform:
		f.fields.Platform = models.Platform(value)
	case FieldReleaseYear:
		year, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: releaseYear must be a whole number", models.ErrValidation)
		}
		f.fields.ReleaseYear = year
	case FieldDeveloper:
		f.fields.Developer = value
	case FieldCoverImage:
		f.fields.CoverImage = value
	case FieldDescription:
		f.fields.Description = value
	case FieldCompleted:
		completed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: completed must be true or false", models.ErrValidation)
		}
		f.fields.Completed = completed
	default:
		return fmt.Errorf("%w: unknown game field %q", models.ErrValidation, field)
	}
	return nil
}

// Submit validates the fields and creates or updates the game. Invalid input
// never reaches the server.
func (f *Form) Submit(ctx context.Context) (models.Game, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return models.Game{}, fmt.Errorf("library: submit already in progress")
	}
	id := f.id
	in := f.fields
	in.Title = strings.TrimSpace(in.Title)
	in.Developer = strings.TrimSpace(in.Developer)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	if err := models.Validate(f.validate, in); err != nil {
		f.mu.Unlock()
		notify.Error(f.notifier, err.Error())
		return models.Game{}, err
	}
	f.submitting = true
	f.mu.Unlock()

	var (
		game models.Game
		err  error
	)
	if id != "" {
		game, err = f.client.UpdateGame(ctx, id, in)
	} else {
		game, err = f.client.CreateGame(ctx, in)
	}

	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn("save game failed", zap.String("game_id", id), zap.Error(err))
		notify.Error(f.notifier, "Could not save game.")
		return models.Game{}, err
	}

	if id != "" {
		notify.Success(f.notifier, "Game updated.")
	} else {
		notify.Success(f.notifier, "Game added.")
	}
	return game, nil
}
