// Package search drives the filtered game search: debounced criteria edits,
// one remote query per quiet period, and out-of-order response suppression.
package search

import (
	"context"
	"sync"
	"time"

	"gametracker/internal/clock"
	"gametracker/internal/models"
	"gametracker/internal/notify"

	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last edit before querying
const DefaultDebounce = 300 * time.Millisecond

// NoResultsKey identifies the "no games match" notice
const NoResultsKey = "no-results"

// Searcher runs a remote search
type Searcher interface {
	SearchGames(ctx context.Context, f models.SearchFilter) ([]models.Game, error)
}

// EmptyState tells the view what to show when there are no results
type EmptyState string

const (
	EmptyNone    EmptyState = "none"
	EmptyPrompt  EmptyState = "prompt"
	EmptyNoMatch EmptyState = "no-match"
)

// Options configures a Controller. Zero values pick the defaults.
type Options struct {
	Scheduler clock.Scheduler
	Debounce  time.Duration
	Notifier  notify.Notifier
	Logger    *zap.Logger
}

// Controller owns the search criteria and results
type Controller struct {
	searcher Searcher
	sched    clock.Scheduler
	debounce time.Duration
	notifier notify.Notifier
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	noticeMu sync.Mutex

	mu       sync.Mutex
	criteria Criteria
	applied  Criteria
	searched bool
	results  []models.Game
	loading  bool
	seq      uint64
	timer    clock.Timer
	closed   bool
	onChange func()
}

// NewController creates a Controller with default criteria
func NewController(searcher Searcher, opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = clock.Real{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLog(opts.Logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		searcher: searcher,
		sched:    opts.Scheduler,
		debounce: opts.Debounce,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		criteria: DefaultCriteria(),
	}
}

// OnChange registers fn to be called after any state change
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// UpdateCriterion sets one criterion and restarts the debounce window.
// Invalid input raises an error notice and changes nothing.
func (c *Controller) UpdateCriterion(field, value string) error {
	c.mu.Lock()
	next, err := c.criteria.with(field, value)
	if err != nil {
		c.mu.Unlock()
		notify.Error(c.notifier, "Invalid filter: "+err.Error())
		return err
	}
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.criteria = next
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.sched.AfterFunc(c.debounce, c.fire)
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return nil
}

// Refresh queries the current criteria immediately, cancelling any pending
// debounce.
func (c *Controller) Refresh() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.fire()
}

// Close stops the debounce timer and abandons in-flight queries
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

// Wait blocks until every issued query has been applied or dropped
func (c *Controller) Wait() {
	c.wg.Wait()
}

// CurrentCriteria returns a snapshot of the criteria
func (c *Controller) CurrentCriteria() Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

// HasActiveCriteria reports whether any filter narrows the results
func (c *Controller) HasActiveCriteria() bool {
	return c.CurrentCriteria().Active()
}

// Results returns the games of the latest applied response
func (c *Controller) Results() []models.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Game(nil), c.results...)
}

// Loading reports whether the latest query is still outstanding
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// EmptyState distinguishes "nothing searched yet" from "nothing matched"
func (c *Controller) EmptyState() EmptyState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.searched || c.loading || len(c.results) > 0 {
		return EmptyNone
	}
	if !c.applied.Active() {
		return EmptyPrompt
	}
	return EmptyNoMatch
}

// fire issues a query for the current criteria snapshot
func (c *Controller) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.seq++
	seq := c.seq
	snapshot := c.criteria
	c.loading = true
	c.wg.Add(1)
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	go c.query(seq, snapshot)
}

func (c *Controller) query(seq uint64, snapshot Criteria) {
	defer c.wg.Done()

	games, err := c.searcher.SearchGames(c.ctx, snapshot.Filter())

	c.mu.Lock()
	if seq != c.seq || c.closed {
		latest := c.seq
		c.mu.Unlock()
		c.logger.Debug("dropping stale search response", zap.Uint64("seq", seq), zap.Uint64("latest", latest))
		return
	}
	c.loading = false
	if err == nil {
		c.results = games
		c.applied = snapshot
		c.searched = true
	}
	onChange := c.onChange
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("search failed", zap.Uint64("seq", seq), zap.Error(err))
	}
	c.notifyLatest(seq, func() {
		switch {
		case err != nil:
			c.notifier.Dismiss(NoResultsKey)
			notify.Error(c.notifier, "Search failed. Please try again.")
		case len(games) == 0 && snapshot.Active():
			notify.Info(c.notifier, NoResultsKey, "No games match your filters.")
		default:
			c.notifier.Dismiss(NoResultsKey)
		}
	})

	if onChange != nil {
		onChange()
	}
}

// notifyLatest runs send only if seq is still the latest query. Notices are
// serialized by noticeMu, so a newer query's notice always lands last.
func (c *Controller) notifyLatest(seq uint64, send func()) {
	c.noticeMu.Lock()
	defer c.noticeMu.Unlock()

	c.mu.Lock()
	latest := c.seq
	current := seq == latest && !c.closed
	c.mu.Unlock()

	if !current {
		c.logger.Debug("dropping stale search notice", zap.Uint64("seq", seq), zap.Uint64("latest", latest))
		return
	}
	send()
}
