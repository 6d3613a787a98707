// Package confirm implements two-outcome deletion prompts. A prompt either
// runs its deletion once confirmed or is dropped on cancel or timeout.
package confirm

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gametracker/internal/clock"
	"gametracker/internal/notify"

	"go.uber.org/zap"
)

// DefaultTimeout is how long an unanswered prompt stays open
const DefaultTimeout = 5 * time.Second

// ErrResolved is returned when a prompt that already has an outcome is
// confirmed or cancelled again.
var ErrResolved = errors.New("confirm: prompt already resolved")

// Outcome is the final state of a prompt
type Outcome string

const (
	Pending   Outcome = "pending"
	Confirmed Outcome = "confirmed"
	Cancelled Outcome = "cancelled"
	Expired   Outcome = "expired"
)

// Deletion describes what a prompt deletes
type Deletion struct {
	// Label names the target in notices, e.g. "Review".
	Label string
	// Delete performs the destructive remote call.
	Delete func(ctx context.Context) error
	// Reload refreshes the owning view after a successful delete. Optional.
	Reload func(ctx context.Context) error
}

// Manager owns the open prompts, at most one per target identity
type Manager struct {
	sched    clock.Scheduler
	timeout  time.Duration
	notifier notify.Notifier
	logger   *zap.Logger

	mu       sync.Mutex
	prompts  map[string]*Prompt
	onChange func()
}

// NewManager creates a Manager. A non-positive timeout uses DefaultTimeout.
func NewManager(sched clock.Scheduler, timeout time.Duration, notifier notify.Notifier, logger *zap.Logger) *Manager {
	if sched == nil {
		sched = clock.Real{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	return &Manager{
		sched:    sched,
		timeout:  timeout,
		notifier: notifier,
		logger:   logger,
		prompts:  make(map[string]*Prompt),
	}
}

// OnChange registers fn to be called whenever a prompt opens or closes
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Request opens a prompt for id. If one is already open for id it is
// returned unchanged.
func (m *Manager) Request(id string, d Deletion) *Prompt {
	m.mu.Lock()
	if p, ok := m.prompts[id]; ok {
		m.mu.Unlock()
		return p
	}

	p := &Prompt{manager: m, id: id, deletion: d, outcome: Pending}
	p.timer = m.sched.AfterFunc(m.timeout, p.expire)
	m.prompts[id] = p
	onChange := m.onChange
	m.mu.Unlock()

	m.logger.Debug("deletion prompt opened", zap.String("id", id), zap.String("label", d.Label))
	if onChange != nil {
		onChange()
	}
	return p
}

// Pending returns the open prompts ordered by target id
func (m *Manager) Pending() []*Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Prompt, 0, len(m.prompts))
	for _, p := range m.prompts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// resolve moves p out of Pending. It reports false if p was already resolved.
func (m *Manager) resolve(p *Prompt, outcome Outcome) bool {
	m.mu.Lock()
	if p.outcome != Pending {
		m.mu.Unlock()
		return false
	}
	p.outcome = outcome
	if m.prompts[p.id] == p {
		delete(m.prompts, p.id)
	}
	onChange := m.onChange
	m.mu.Unlock()

	p.timer.Stop()
	if onChange != nil {
		onChange()
	}
	return true
}

// Prompt is one open deletion confirmation
type Prompt struct {
	manager  *Manager
	id       string
	deletion Deletion
	timer    clock.Timer

	// guarded by manager.mu
	outcome Outcome
	err     error
}

// ID returns the identity of the target
func (p *Prompt) ID() string { return p.id }

// Label returns the target's display label
func (p *Prompt) Label() string { return p.deletion.Label }

// Outcome reports the prompt's current state
func (p *Prompt) Outcome() Outcome {
	p.manager.mu.Lock()
	defer p.manager.mu.Unlock()
	return p.outcome
}

// Err returns the deletion error of a confirmed prompt, if any
func (p *Prompt) Err() error {
	p.manager.mu.Lock()
	defer p.manager.mu.Unlock()
	return p.err
}

// Confirm runs the deletion. On success a success notice is raised and the
// owner is reloaded; on failure an error notice is raised and nothing else
// changes.
func (p *Prompt) Confirm(ctx context.Context) error {
	m := p.manager
	if !m.resolve(p, Confirmed) {
		return ErrResolved
	}

	if err := p.deletion.Delete(ctx); err != nil {
		m.mu.Lock()
		p.err = err
		m.mu.Unlock()
		m.logger.Warn("delete failed", zap.String("id", p.id), zap.String("label", p.deletion.Label), zap.Error(err))
		notify.Error(m.notifier, "Could not delete "+lower(p.deletion.Label)+".")
		return err
	}

	notify.Success(m.notifier, p.deletion.Label+" deleted.")
	if p.deletion.Reload != nil {
		if err := p.deletion.Reload(ctx); err != nil {
			m.logger.Warn("reload after delete failed", zap.String("id", p.id), zap.Error(err))
		}
	}
	return nil
}

// Cancel drops the prompt without any remote call
func (p *Prompt) Cancel() error {
	if !p.manager.resolve(p, Cancelled) {
		return ErrResolved
	}
	p.manager.logger.Debug("deletion cancelled", zap.String("id", p.id))
	return nil
}

// Expire closes the prompt as if it were cancelled. The manager calls it when
// the display timeout elapses.
func (p *Prompt) Expire() error {
	if !p.manager.resolve(p, Expired) {
		return ErrResolved
	}
	p.manager.logger.Debug("deletion prompt expired", zap.String("id", p.id))
	return nil
}

func (p *Prompt) expire() {
	_ = p.Expire()
}

func lower(label string) string {
	if label == "" {
		return "item"
	}
	return strings.ToLower(label)
}
