package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/soyeahso/meshbuilder/internal/hooks"
	"github.com/soyeahso/meshbuilder/internal/layout"
	"github.com/soyeahso/meshbuilder/internal/logging"
	"github.com/soyeahso/meshbuilder/internal/service"
)

// DefaultSeedDelay is how long the controller waits after confirmation
// before seeding the opening agents.
const DefaultSeedDelay = 3200 * time.Millisecond

// Backend runs discovery and agent generation.
type Backend interface {
	Discover(ctx context.Context, company string) (*domain.Discovery, error)
	GenerateAgent(ctx context.Context, req service.AgentRequest) (*domain.AgentConcept, error)
}

// Options configure a Controller. MessagesPerAgent feeds the throughput
// estimate in metrics. OnChange is called after every state transition,
// outside the controller's lock.
type Options struct {
	AutoSeed         bool
	SeedDelay        time.Duration
	MessagesPerAgent int64
	Hooks            *hooks.Manager
	OnChange         func(State)
}

// RequestOptions modify a single agent request.
type RequestOptions struct {
	// AllowDuplicate regenerates a combination that already has an agent.
	AllowDuplicate bool

	// Silent keeps failures out of the visible error.
	Silent bool
}

// Controller drives a session. It serializes transitions and runs agent
// generation in the background.
type Controller struct {
	backend Backend
	opts    Options
	log     *logging.Logger

	mu       sync.Mutex
	state    State
	gesture  Gesture
	attempts uint64
	seedStop context.CancelFunc

	wg sync.WaitGroup
}

// NewController creates a controller in the initial state.
func NewController(backend Backend, opts Options, log *logging.Logger) *Controller {
	if opts.MessagesPerAgent <= 0 {
		opts.MessagesPerAgent = DefaultMessagesPerAgent
	}
	return &Controller{
		backend: backend,
		opts:    opts,
		log:     log.Sub("session"),
		state:   Initial(),
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies a to the current state.
func (c *Controller) Dispatch(a Action) error {
	c.mu.Lock()
	next, err := Reduce(c.state, a)
	if err == nil {
		c.state = next
	}
	c.mu.Unlock()
	if err == nil {
		c.changed(next)
	}
	return err
}

// Fail records err as the visible error and returns it.
func (c *Controller) Fail(err error) error {
	c.Dispatch(SetError{Message: err.Error()})
	return err
}

func (c *Controller) changed(s State) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(s)
	}
}

func (c *Controller) emit(ctx context.Context, event string, data map[string]any) {
	if c.opts.Hooks != nil {
		c.opts.Hooks.EmitAsync(ctx, event, data)
	}
}

// Search resets the session and loads the platforms discovered for company
// into the review list.
func (c *Controller) Search(ctx context.Context, company string) error {
	company = strings.TrimSpace(company)
	if company == "" {
		c.Dispatch(SetError{Message: "Please enter a company name to explore."})
		return service.ErrCompanyRequired
	}

	c.stopSeeding()
	c.Dispatch(Reset{})

	d, err := c.backend.Discover(ctx, company)
	if err != nil {
		c.log.Warn().Err(err).Str("company", company).Msg("discovery failed")
		return c.Fail(err)
	}
	return c.Dispatch(Discovered{Discovery: d})
}

// Confirm builds the mesh from the selected platforms and, when enabled,
// schedules the opening agents.
func (c *Controller) Confirm(ctx context.Context) error {
	if err := c.Dispatch(Confirm{}); err != nil {
		return c.Fail(err)
	}
	s := c.State()
	c.log.Info().Str("company", s.Company).Int("platforms", len(s.Platforms)).Msg("mesh confirmed")
	c.emit(ctx, hooks.EventMeshConfirmed, map[string]any{
		"company":   s.Company,
		"platforms": len(s.Platforms),
		"vendor":    len(s.Agents),
	})
	if c.opts.AutoSeed {
		c.scheduleSeeds(ctx)
	}
	return nil
}

// Press starts a connection gesture on a platform node.
func (c *Controller) Press(id string) GestureView {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gesture.Press(id)
	return c.gesture.view()
}

// Enter extends the active gesture to a platform node.
func (c *Controller) Enter(id string) GestureView {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gesture.Enter(id)
	return c.gesture.view()
}

// Gesture returns the gesture in progress.
func (c *Controller) Gesture() GestureView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gesture.view()
}

// Release ends the gesture and requests an agent for the touched platforms.
func (c *Controller) Release(ctx context.Context) (bool, error) {
	c.mu.Lock()
	ids := c.gesture.Release()
	c.mu.Unlock()
	return c.CompleteGesture(ctx, ids)
}

// CompleteGesture maps platform ids to names and requests an agent. Gestures
// touching fewer than two distinct platforms are discarded.
func (c *Controller) CompleteGesture(ctx context.Context, ids []string) (bool, error) {
	s := c.State()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := s.platformName(id); ok {
			names = append(names, name)
		}
	}
	names, err := domain.SelectNames(names)
	if err != nil {
		return false, nil
	}
	return c.RequestAgent(ctx, names, RequestOptions{})
}

// RequestAgent inserts a pending agent for names and generates it in the
// background. It reports false when a finished agent already covers the
// combination and duplicates are not allowed.
func (c *Controller) RequestAgent(ctx context.Context, names []string, opts RequestOptions) (bool, error) {
	done, err := c.requestAgent(ctx, names, opts)
	return done != nil, err
}

func (c *Controller) requestAgent(ctx context.Context, names []string, opts RequestOptions) (<-chan struct{}, error) {
	names, err := domain.SelectNames(names)
	if err != nil {
		if !opts.Silent {
			c.Fail(errors.New("Select at least two solutions to form an agent concept."))
		}
		return nil, err
	}
	key := domain.AgentKey(names)

	c.mu.Lock()
	if c.state.HasResolved(key) && !opts.AllowDuplicate {
		c.mu.Unlock()
		c.log.Debug().Str("key", key).Msg("agent already exists")
		return nil, nil
	}
	c.attempts++
	attempt := c.attempts
	next, _ := Reduce(c.state, BeginAgent{Names: names, Attempt: attempt, Silent: opts.Silent})
	c.state = next
	company, priorities := next.Company, next.Priorities
	c.wg.Add(1)
	c.mu.Unlock()

	c.changed(next)
	c.emit(ctx, hooks.EventAgentPending, map[string]any{"key": key, "solutions": names})

	done := make(chan struct{})
	go func() {
		defer c.wg.Done()
		defer close(done)
		c.generate(ctx, names, key, attempt, company, priorities, opts)
	}()
	return done, nil
}

func (c *Controller) generate(ctx context.Context, names []string, key string, attempt uint64, company, priorities string, opts RequestOptions) {
	concept, err := c.backend.GenerateAgent(ctx, service.AgentRequest{
		Solutions:  names,
		Priorities: priorities,
		Company:    company,
	})

	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Bool("silent", opts.Silent).Msg("agent generation failed")
		if derr := c.Dispatch(FailAgent{Key: key, Attempt: attempt, Err: err.Error(), Silent: opts.Silent}); derr != nil {
			c.log.Debug().Str("key", key).Uint64("attempt", attempt).Msg("dropping stale agent failure")
			return
		}
		c.emit(ctx, hooks.EventAgentFailed, map[string]any{"key": key, "error": err.Error()})
		return
	}

	if derr := c.Dispatch(ResolveAgent{Key: key, Attempt: attempt, Concept: *concept}); derr != nil {
		c.log.Debug().Str("key", key).Uint64("attempt", attempt).Msg("dropping stale agent result")
		return
	}
	c.emit(ctx, hooks.EventAgentResolved, map[string]any{"key": key, "agentName": concept.AgentName})
}

// AutoSeed waits for the seed delay and then requests the opening agents
// one at a time. Failures are silent.
func (c *Controller) AutoSeed(ctx context.Context) {
	if c.opts.SeedDelay > 0 {
		t := time.NewTimer(c.opts.SeedDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}

	s := c.State()
	if len(s.Platforms) < domain.MinAgentPlatforms {
		return
	}
	nodes := layout.PlacePlatforms(s.Platforms, layout.NewEllipse(s.Viewport))
	seeds := layout.BalancedSeeds(nodes, layout.SeedPairCount(len(nodes)))
	c.log.Debug().Int("pairs", len(seeds)).Msg("seeding opening agents")

	for _, pair := range seeds {
		if ctx.Err() != nil {
			return
		}
		done, err := c.requestAgent(ctx, pair[:], RequestOptions{Silent: true})
		if err != nil || done == nil {
			continue
		}
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Controller) scheduleSeeds(ctx context.Context) {
	c.stopSeeding()
	seedCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.seedStop = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.AutoSeed(seedCtx)
	}()
}

func (c *Controller) stopSeeding() {
	c.mu.Lock()
	stop := c.seedStop
	c.seedStop = nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Wait blocks until background seeding and generation have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close stops seeding and waits for in-flight generations.
func (c *Controller) Close() {
	c.stopSeeding()
	c.Wait()
}

// View is a state snapshot with its derived layout and metrics.
type View struct {
	State   State       `json:"state"`
	Gesture GestureView `json:"gesture"`
	Layout  layout.Mesh `json:"layout"`
	Metrics Metrics     `json:"metrics"`
}

// Snapshot returns the current state with its layout and metrics.
func (c *Controller) Snapshot() View {
	s := c.State()
	return View{
		State:   s,
		Gesture: c.Gesture(),
		Layout: layout.Compute(layout.Input{
			Viewport:  s.Viewport,
			Platforms: s.Platforms,
			Agents:    s.Agents,
			Heatmap:   s.Context.PriorityHeatmap,
		}),
		Metrics: ComputeMetrics(s, c.opts.MessagesPerAgent),
	}
}
