package reviews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"gametracker/internal/catalog"
	"gametracker/internal/clock"
	"gametracker/internal/confirm"
	"gametracker/internal/models"
	"gametracker/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memClient is an in-memory catalog for one game
type memClient struct {
	mu      sync.Mutex
	game    models.Game
	reviews []models.Review
	nextID  int
	created []models.CreateReviewRequest
	updated map[string]models.ReviewInput
	failAll error
}

func newMemClient(gameID string, reviews ...models.Review) *memClient {
	return &memClient{
		game:    models.Game{ID: gameID, Title: "Celeste"},
		reviews: reviews,
		updated: make(map[string]models.ReviewInput),
	}
}

func (m *memClient) GetGame(ctx context.Context, id string) (models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return models.Game{}, m.failAll
	}
	return m.game, nil
}

func (m *memClient) ListReviews(ctx context.Context, gameID string) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	return append([]models.Review(nil), m.reviews...), nil
}

func (m *memClient) CreateReview(ctx context.Context, req models.CreateReviewRequest) (models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return models.Review{}, m.failAll
	}
	m.created = append(m.created, req)
	m.nextID++
	r := models.Review{ID: fmt.Sprintf("new-%d", m.nextID), GameID: req.GameID}
	req.Apply(&r)
	m.reviews = append(m.reviews, r)
	return r, nil
}

func (m *memClient) UpdateReview(ctx context.Context, id string, in models.ReviewInput) (models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return models.Review{}, m.failAll
	}
	for i := range m.reviews {
		if m.reviews[i].ID == id {
			m.updated[id] = in
			in.Apply(&m.reviews[i])
			return m.reviews[i], nil
		}
	}
	return models.Review{}, &catalog.APIError{Status: http.StatusNotFound, Message: "review not found"}
}

func (m *memClient) DeleteReview(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	for i := range m.reviews {
		if m.reviews[i].ID == id {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return nil
		}
	}
	return &catalog.APIError{Status: http.StatusNotFound, Message: "review not found"}
}

func (m *memClient) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = err
}

func existingReview() models.Review {
	return models.Review{
		ID:             "R1",
		GameID:         "G1",
		Score:          3,
		Text:           "Hard but fair",
		HoursPlayed:    25.5,
		Difficulty:     models.DifficultyHard,
		WouldRecommend: false,
	}
}

func newTestController(client Client) (*Controller, *notify.Recorder, *clock.Fake) {
	rec := notify.NewRecorder()
	fake := clock.NewFake()
	confirms := confirm.NewManager(fake, confirm.DefaultTimeout, rec, nil)
	return NewController("G1", client, confirms, rec, nil), rec, fake
}

func TestDefaults(t *testing.T) {
	c, _, _ := newTestController(newMemClient("G1"))

	assert.Equal(t, ModeCreate, c.Mode())
	assert.Empty(t, c.EditingID())
	assert.Equal(t, Draft{Score: 5, Text: "", HoursPlayed: 0, Difficulty: models.DifficultyNormal, WouldRecommend: true}, c.Draft())
}

func TestEnterEditThenCancelRestoresDefaults(t *testing.T) {
	c, _, _ := newTestController(newMemClient("G1"))

	c.EnterEditMode(existingReview())
	assert.Equal(t, ModeEdit, c.Mode())
	assert.Equal(t, "R1", c.EditingID())
	assert.Equal(t, DraftFromReview(existingReview()), c.Draft())

	c.CancelEdit()
	assert.Equal(t, ModeCreate, c.Mode())
	assert.Empty(t, c.EditingID())
	assert.Equal(t, DefaultDraft(), c.Draft())
}

func TestEnterEditRetargets(t *testing.T) {
	c, _, _ := newTestController(newMemClient("G1"))

	c.EnterEditMode(existingReview())
	other := models.Review{ID: "R2", Score: 1, Difficulty: models.DifficultyEasy}
	c.EnterEditMode(other)

	assert.Equal(t, ModeEdit, c.Mode())
	assert.Equal(t, "R2", c.EditingID())
	assert.Equal(t, 1, c.Draft().Score)
}

func TestUpdateFieldRejectsOutOfRange(t *testing.T) {
	c, rec, _ := newTestController(newMemClient("G1"))
	before := c.Draft()

	for _, tc := range []struct{ field, value string }{
		{FieldScore, "0"},
		{FieldScore, "6"},
		{FieldScore, "four"},
		{FieldHoursPlayed, "-1"},
		{FieldHoursPlayed, "NaN"},
		{FieldDifficulty, "Nightmare"},
		{FieldWouldRecommend, "maybe"},
		{"rating", "5"},
	} {
		err := c.UpdateField(tc.field, tc.value)
		assert.ErrorIs(t, err, models.ErrValidation, "%s=%s", tc.field, tc.value)
	}
	assert.ErrorIs(t, c.SetScore(9), models.ErrValidation)
	assert.ErrorIs(t, c.SetHoursPlayed(-0.5), models.ErrValidation)

	assert.Equal(t, before, c.Draft())
	assert.Equal(t, 10, rec.Count(notify.LevelError))
}

func TestUpdateFieldAcceptsValidInput(t *testing.T) {
	c, _, _ := newTestController(newMemClient("G1"))

	require.NoError(t, c.UpdateField(FieldScore, "4"))
	require.NoError(t, c.UpdateField(FieldText, "Great"))
	require.NoError(t, c.UpdateField(FieldHoursPlayed, "10"))
	require.NoError(t, c.UpdateField(FieldDifficulty, "Hard"))
	require.NoError(t, c.UpdateField(FieldWouldRecommend, "false"))

	assert.Equal(t, Draft{Score: 4, Text: "Great", HoursPlayed: 10, Difficulty: models.DifficultyHard, WouldRecommend: false}, c.Draft())
}

func TestCreateSubmitPostsAndResetsDraft(t *testing.T) {
	client := newMemClient("G1")
	c, rec, _ := newTestController(client)

	require.NoError(t, c.SetScore(4))
	c.SetText("Great")
	require.NoError(t, c.SetHoursPlayed(10))
	require.NoError(t, c.SetDifficulty(models.DifficultyNormal))
	c.SetWouldRecommend(true)

	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, client.created, 1)
	assert.Equal(t, models.CreateReviewRequest{
		GameID: "G1",
		ReviewInput: models.ReviewInput{
			Score: 4, Text: "Great", HoursPlayed: 10, Difficulty: models.DifficultyNormal, WouldRecommend: true,
		},
	}, client.created[0])

	assert.Equal(t, ModeCreate, c.Mode())
	assert.Equal(t, Draft{Score: 5, Text: "", HoursPlayed: 0, Difficulty: models.DifficultyNormal, WouldRecommend: true}, c.Draft())
	require.Len(t, c.Reviews(), 1)
	assert.Equal(t, "Great", c.Reviews()[0].Text)
	assert.Equal(t, "Celeste", c.Game().Title)
	assert.Equal(t, 1, rec.Count(notify.LevelSuccess))
}

func TestEditSubmitUpdatesAndReturnsToCreate(t *testing.T) {
	client := newMemClient("G1", existingReview())
	c, _, _ := newTestController(client)
	require.NoError(t, c.Load(context.Background()))

	c.EnterEditMode(c.Reviews()[0])
	require.NoError(t, c.UpdateField(FieldScore, "5"))
	require.NoError(t, c.UpdateField(FieldText, "Changed my mind"))

	require.NoError(t, c.Submit(context.Background()))

	assert.Equal(t, ModeCreate, c.Mode())
	assert.Empty(t, c.EditingID())
	assert.Equal(t, DefaultDraft(), c.Draft())
	assert.Empty(t, client.created)

	reviews := c.Reviews()
	require.Len(t, reviews, 1)
	assert.Equal(t, "R1", reviews[0].ID)
	assert.Equal(t, 5, reviews[0].Score)
	assert.Equal(t, "Changed my mind", reviews[0].Text)
	assert.Equal(t, 25.5, reviews[0].HoursPlayed)
}

func TestSubmitFailureKeepsDraftAndMode(t *testing.T) {
	client := newMemClient("G1", existingReview())
	c, rec, _ := newTestController(client)

	c.EnterEditMode(existingReview())
	require.NoError(t, c.UpdateField(FieldText, "edited"))
	draft := c.Draft()

	client.fail(errors.New("503"))
	assert.Error(t, c.Submit(context.Background()))

	assert.Equal(t, ModeEdit, c.Mode())
	assert.Equal(t, "R1", c.EditingID())
	assert.Equal(t, draft, c.Draft())
	assert.False(t, c.Submitting())
	assert.Equal(t, 1, rec.Count(notify.LevelError))
}

func TestSubmitValidatesBeforeRemoteCall(t *testing.T) {
	client := newMemClient("G1", existingReview())
	c, rec, _ := newTestController(client)

	// Records loaded from the server may predate the difficulty enum.
	bad := existingReview()
	bad.Difficulty = ""
	c.EnterEditMode(bad)

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Empty(t, client.updated)
	assert.Equal(t, ModeEdit, c.Mode())
	assert.Equal(t, 1, rec.Count(notify.LevelError))
}

func TestDeletingEditedReviewReturnsToCreate(t *testing.T) {
	client := newMemClient("G1", existingReview())
	c, rec, _ := newTestController(client)
	require.NoError(t, c.Load(context.Background()))

	c.EnterEditMode(c.Reviews()[0])
	p := c.RequestDelete("R1")
	require.NoError(t, p.Confirm(context.Background()))

	assert.Equal(t, ModeCreate, c.Mode())
	assert.Empty(t, c.EditingID())
	assert.Equal(t, DefaultDraft(), c.Draft())
	assert.Empty(t, c.Reviews())
	assert.Equal(t, 1, rec.Count(notify.LevelSuccess))
}

func TestDeletingOtherReviewKeepsEditSession(t *testing.T) {
	other := models.Review{ID: "R2", GameID: "G1", Score: 2, Difficulty: models.DifficultyEasy}
	client := newMemClient("G1", existingReview(), other)
	c, _, _ := newTestController(client)

	c.EnterEditMode(existingReview())
	require.NoError(t, c.RequestDelete("R2").Confirm(context.Background()))

	assert.Equal(t, ModeEdit, c.Mode())
	assert.Equal(t, "R1", c.EditingID())
	require.Len(t, c.Reviews(), 1)
}

func TestFailedDeleteKeepsEditSession(t *testing.T) {
	client := newMemClient("G1", existingReview())
	c, rec, _ := newTestController(client)

	c.EnterEditMode(existingReview())
	client.fail(errors.New("timeout"))
	assert.Error(t, c.RequestDelete("R1").Confirm(context.Background()))

	assert.Equal(t, ModeEdit, c.Mode())
	assert.Equal(t, "R1", c.EditingID())
	assert.Equal(t, 1, rec.Count(notify.LevelError))
}

func TestExpiredDeleteMakesNoCall(t *testing.T) {
	client := newMemClient("G1", existingReview())
	c, _, fake := newTestController(client)

	p := c.RequestDelete("R1")
	fake.Advance(confirm.DefaultTimeout)

	assert.Equal(t, confirm.Expired, p.Outcome())
	require.NoError(t, c.Load(context.Background()))
	assert.Len(t, c.Reviews(), 1)
}

func TestLoadFailureKeepsPreviousState(t *testing.T) {
	client := newMemClient("G1", existingReview())
	c, rec, _ := newTestController(client)
	require.NoError(t, c.Load(context.Background()))

	client.fail(errors.New("connection reset"))
	assert.Error(t, c.Load(context.Background()))

	assert.Len(t, c.Reviews(), 1)
	assert.Equal(t, "Celeste", c.Game().Title)
	assert.False(t, c.Loading())
	assert.Equal(t, 1, rec.Count(notify.LevelError))
}

func TestControllersForSameGameGetOwnPrompts(t *testing.T) {
	client := newMemClient("G1", existingReview())
	rec := notify.NewRecorder()
	confirms := confirm.NewManager(clock.NewFake(), confirm.DefaultTimeout, rec, nil)
	first := NewController("G1", client, confirms, rec, nil)
	second := NewController("G1", client, confirms, rec, nil)

	first.EnterEditMode(existingReview())
	second.EnterEditMode(existingReview())

	p1 := first.RequestDelete("R1")
	p2 := second.RequestDelete("R1")
	require.NotSame(t, p1, p2)
	assert.Len(t, confirms.Pending(), 2)

	require.NoError(t, p1.Confirm(context.Background()))
	assert.Equal(t, ModeCreate, first.Mode())
	assert.Equal(t, ModeEdit, second.Mode())

	// The review is gone on the server, so the second session ends too.
	assert.ErrorIs(t, p2.Confirm(context.Background()), catalog.ErrNotFound)
	assert.Equal(t, ModeCreate, second.Mode())
	assert.Empty(t, second.EditingID())
	assert.Empty(t, second.Reviews())
}

func TestEditSubmitOfDeletedReviewReturnsToCreate(t *testing.T) {
	client := newMemClient("G1")
	c, rec, _ := newTestController(client)

	c.EnterEditMode(existingReview())
	err := c.Submit(context.Background())

	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, ModeCreate, c.Mode())
	assert.Equal(t, DefaultDraft(), c.Draft())
	assert.Equal(t, 1, rec.Count(notify.LevelError))
}
