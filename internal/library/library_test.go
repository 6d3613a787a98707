package library

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gametracker/internal/clock"
	"gametracker/internal/confirm"
	"gametracker/internal/models"
	"gametracker/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCatalog struct {
	mu      sync.Mutex
	games   []models.Game
	created []models.GameInput
	updated map[string]models.GameInput
	err     error
}

func newMemCatalog(games ...models.Game) *memCatalog {
	return &memCatalog{games: games, updated: make(map[string]models.GameInput)}
}

func (m *memCatalog) ListGames(ctx context.Context) ([]models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.Game(nil), m.games...), nil
}

func (m *memCatalog) GetGame(ctx context.Context, id string) (models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Game{}, m.err
	}
	for _, g := range m.games {
		if g.ID == id {
			return g, nil
		}
	}
	return models.Game{}, errors.New("not found")
}

func (m *memCatalog) CreateGame(ctx context.Context, in models.GameInput) (models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Game{}, m.err
	}
	m.created = append(m.created, in)
	g := models.Game{ID: "new"}
	in.Apply(&g)
	m.games = append(m.games, g)
	return g, nil
}

func (m *memCatalog) UpdateGame(ctx context.Context, id string, in models.GameInput) (models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Game{}, m.err
	}
	m.updated[id] = in
	g := models.Game{ID: id}
	in.Apply(&g)
	return g, nil
}

func (m *memCatalog) DeleteGame(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, g := range m.games {
		if g.ID == id {
			m.games = append(m.games[:i], m.games[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memCatalog) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func hades() models.Game {
	return models.Game{
		ID: "g1", Title: "Hades", Genre: models.GenreRoguelike, Platform: models.PlatformPC,
		ReleaseYear: 2020, Developer: "Supergiant Games",
	}
}

func newTestLibrary(m *memCatalog) (*Controller, *notify.Recorder) {
	rec := notify.NewRecorder()
	confirms := confirm.NewManager(clock.NewFake(), confirm.DefaultTimeout, rec, nil)
	return NewController(m, confirms, rec, nil), rec
}

func TestLibraryLoadAndSelect(t *testing.T) {
	c, _ := newTestLibrary(newMemCatalog(hades()))

	require.NoError(t, c.Load(context.Background()))
	require.Len(t, c.Games(), 1)

	_, ok := c.Selected()
	assert.False(t, ok)

	c.Select(c.Games()[0])
	selected, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "Hades", selected.Title)

	c.CloseDetails()
	_, ok = c.Selected()
	assert.False(t, ok)
}

func TestLibraryLoadFailureKeepsList(t *testing.T) {
	m := newMemCatalog(hades())
	c, rec := newTestLibrary(m)
	require.NoError(t, c.Load(context.Background()))

	m.setErr(errors.New("offline"))
	assert.Error(t, c.Load(context.Background()))

	assert.Len(t, c.Games(), 1)
	assert.False(t, c.Loading())
	assert.Equal(t, 1, rec.Count(notify.LevelError))
}

func TestLibraryDeleteClosesDetailsAndReloads(t *testing.T) {
	c, rec := newTestLibrary(newMemCatalog(hades()))
	require.NoError(t, c.Load(context.Background()))
	c.Select(hades())

	require.NoError(t, c.RequestDelete("g1").Confirm(context.Background()))

	assert.Empty(t, c.Games())
	_, ok := c.Selected()
	assert.False(t, ok)
	assert.Equal(t, 1, rec.Count(notify.LevelSuccess))
}

func TestLibraryCancelledDeleteKeepsGame(t *testing.T) {
	m := newMemCatalog(hades())
	c, _ := newTestLibrary(m)

	require.NoError(t, c.RequestDelete("g1").Cancel())
	assert.Len(t, m.games, 1)
}

func newTestForm(m *memCatalog) (*Form, *notify.Recorder) {
	rec := notify.NewRecorder()
	f := NewForm(m, rec, nil)
	f.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	f.Reset()
	return f, rec
}

func TestFormDefaults(t *testing.T) {
	f, _ := newTestForm(newMemCatalog())

	assert.False(t, f.Editing())
	assert.Equal(t, models.GameInput{
		Genre: models.GenreAction, Platform: models.PlatformPC, ReleaseYear: 2024,
	}, f.Fields())
}

func TestFormValidatesBeforeRemoteCall(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"missing title", FieldTitle, "   ", "title is required"},
		{"bad cover url", FieldCoverImage, "ftp://example.com/x.png", "coverImage"},
		{"cover without host dot", FieldCoverImage, "http://localhost", "coverImage"},
		{"unknown genre", FieldGenre, "Puzzle", "genre"},
		{"unknown platform", FieldPlatform, "Dreamcast", "platform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemCatalog()
			f, rec := newTestForm(m)
			require.NoError(t, f.UpdateField(FieldTitle, "Hades"))
			require.NoError(t, f.UpdateField(FieldDeveloper, "Supergiant Games"))
			require.NoError(t, f.UpdateField(tt.field, tt.value))

			_, err := f.Submit(context.Background())
			require.ErrorIs(t, err, models.ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, m.created)
			assert.Equal(t, 1, rec.Count(notify.LevelError))
		})
	}
}

func TestFormRequiresDeveloper(t *testing.T) {
	m := newMemCatalog()
	f, _ := newTestForm(m)
	require.NoError(t, f.UpdateField(FieldTitle, "Hades"))

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "developer is required")
}

func TestFormCreate(t *testing.T) {
	m := newMemCatalog()
	f, rec := newTestForm(m)

	require.NoError(t, f.UpdateField(FieldTitle, "  Hades "))
	require.NoError(t, f.UpdateField(FieldDeveloper, "Supergiant Games"))
	require.NoError(t, f.UpdateField(FieldGenre, string(models.GenreRoguelike)))
	require.NoError(t, f.UpdateField(FieldCoverImage, "https://img.example.com/hades.png"))
	require.NoError(t, f.UpdateField(FieldCompleted, "true"))

	game, err := f.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Hades", game.Title)
	require.Len(t, m.created, 1)
	assert.Equal(t, models.PlatformPC, m.created[0].Platform)
	assert.Equal(t, 2024, m.created[0].ReleaseYear)
	assert.True(t, m.created[0].Completed)
	assert.Equal(t, 1, rec.Count(notify.LevelSuccess))
}

func TestFormEditFillsMissingValues(t *testing.T) {
	legacy := models.Game{ID: "old", Title: "Tetris", Developer: "Pajitnov"}
	m := newMemCatalog(legacy)
	f, _ := newTestForm(m)

	require.NoError(t, f.Load(context.Background(), "old"))
	assert.True(t, f.Editing())
	assert.Equal(t, "old", f.GameID())

	fields := f.Fields()
	assert.Equal(t, "Tetris", fields.Title)
	assert.Equal(t, models.GenreAction, fields.Genre)
	assert.Equal(t, models.PlatformPC, fields.Platform)
	assert.Equal(t, 2024, fields.ReleaseYear)

	require.NoError(t, f.UpdateField(FieldReleaseYear, "1984"))
	_, err := f.Submit(context.Background())
	require.NoError(t, err)

	assert.Empty(t, m.created)
	assert.Equal(t, 1984, m.updated["old"].ReleaseYear)
}

func TestFormRemoteFailure(t *testing.T) {
	m := newMemCatalog()
	f, rec := newTestForm(m)
	require.NoError(t, f.UpdateField(FieldTitle, "Hades"))
	require.NoError(t, f.UpdateField(FieldDeveloper, "Supergiant Games"))

	m.setErr(errors.New("500"))
	_, err := f.Submit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "Hades", f.Fields().Title)
	assert.Equal(t, 1, rec.Count(notify.LevelError))
}

func TestFormRejectsBadYear(t *testing.T) {
	f, _ := newTestForm(newMemCatalog())
	assert.ErrorIs(t, f.UpdateField(FieldReleaseYear, "soon"), models.ErrValidation)
	assert.ErrorIs(t, f.UpdateField("rating", "5"), models.ErrValidation)
	assert.Equal(t, 2024, f.Fields().ReleaseYear)
}

func TestFormFieldErrorsRaiseNotice(t *testing.T) {
	f, rec := newTestForm(newMemCatalog())

	require.Error(t, f.UpdateField(FieldCompleted, "maybe"))
	require.Error(t, f.UpdateField(FieldReleaseYear, "soon"))
	require.NoError(t, f.UpdateField(FieldTitle, "Celeste"))

	assert.Equal(t, 2, rec.Count(notify.LevelError))
	notices := rec.Notices()
	require.Len(t, notices, 2)
	assert.Contains(t, notices[0].Message, "completed must be true or false")
	assert.Contains(t, notices[1].Message, "releaseYear must be a whole number")
	assert.False(t, f.Fields().Completed)
	assert.Equal(t, "Celeste", f.Fields().Title)
}
