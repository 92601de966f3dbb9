package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/soyeahso/meshbuilder/internal/hooks"
	"github.com/soyeahso/meshbuilder/internal/logging"
	"github.com/soyeahso/meshbuilder/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	discovery   *domain.Discovery
	discoverErr error
	generate    func(ctx context.Context, req service.AgentRequest) (*domain.AgentConcept, error)

	mu       sync.Mutex
	requests []service.AgentRequest
}

func (f *fakeBackend) Discover(_ context.Context, company string) (*domain.Discovery, error) {
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	d := *f.discovery
	d.Company = company
	return &d, nil
}

func (f *fakeBackend) GenerateAgent(ctx context.Context, req service.AgentRequest) (*domain.AgentConcept, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.generate != nil {
		return f.generate(ctx, req)
	}
	return &domain.AgentConcept{AgentName: "Agent " + domain.AgentKey(req.Solutions), Solutions: req.Solutions}, nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

var sixPlatforms = []string{"Workday", "ServiceNow", "Snowflake", "Slack", "Jira", "Zendesk"}

func newController(t *testing.T, backend Backend, opts Options) *Controller {
	t.Helper()
	c := NewController(backend, opts, logging.New(nil, "silent"))
	t.Cleanup(c.Close)
	return c
}

// confirmedController returns a controller whose mesh holds the first n of
// sixPlatforms.
func confirmedController(t *testing.T, backend *fakeBackend, n int, opts Options) *Controller {
	t.Helper()
	backend.discovery = discovery("acme", sixPlatforms...)
	c := newController(t, backend, opts)
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "Acme"))
	s := c.State()
	for _, cand := range s.Candidates[n:] {
		require.NoError(t, c.Dispatch(ToggleSelection{ID: cand.ID}))
	}
	require.NoError(t, c.Confirm(ctx))
	return c
}

func platformID(t *testing.T, c *Controller, name string) string {
	t.Helper()
	for _, p := range c.State().Platforms {
		if p.Name == name {
			return p.ID
		}
	}
	t.Fatalf("no platform %q", name)
	return ""
}

// Discovery of six platforms, confirmation of five: five platform nodes, no agents.
func TestScenario_ConfirmFive(t *testing.T) {
	backend := &fakeBackend{discovery: discovery("acme", sixPlatforms...)}
	c := newController(t, backend, Options{})
	ctx := context.Background()

	require.NoError(t, c.Search(ctx, "Acme"))
	s := c.State()
	require.Equal(t, PhaseReviewing, s.Phase)
	require.Len(t, s.Candidates, 6)
	for _, cand := range s.Candidates {
		assert.True(t, s.IsSelected(cand.ID))
	}

	// four selected is not enough
	require.NoError(t, c.Dispatch(ToggleSelection{ID: s.Candidates[4].ID}))
	require.NoError(t, c.Dispatch(ToggleSelection{ID: s.Candidates[5].ID}))
	err := c.Confirm(ctx)
	require.ErrorIs(t, err, ErrTooFewSelected)
	assert.Equal(t, "Select at least five platforms (currently 4).", c.State().Error)

	require.NoError(t, c.Dispatch(ToggleSelection{ID: s.Candidates[4].ID}))
	require.NoError(t, c.Confirm(ctx))

	view := c.Snapshot()
	assert.Equal(t, PhaseMesh, view.State.Phase)
	assert.Empty(t, view.State.Error)
	assert.Len(t, view.Layout.Platforms, 5)
	assert.Empty(t, view.Layout.Agents)
	assert.Zero(t, backend.calls())
}

// A gesture across SAP and Salesforce shows a placeholder at once, then the
// generated agent.
func TestScenario_GestureResolves(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		discovery: discovery("acme", "SAP", "Salesforce", "Workday", "Slack", "Jira"),
		generate: func(ctx context.Context, req service.AgentRequest) (*domain.AgentConcept, error) {
			<-release
			return &domain.AgentConcept{AgentName: "Quote-to-Cash Agent", Description: "Syncs quotes", Solutions: req.Solutions}, nil
		},
	}
	c := newController(t, backend, Options{})
	ctx := context.Background()
	require.NoError(t, c.Search(ctx, "acme"))
	require.NoError(t, c.Confirm(ctx))
	vendor := len(c.State().Agents)

	sap, crm := platformID(t, c, "SAP"), platformID(t, c, "Salesforce")
	assert.Equal(t, GestureView{Active: true, Touched: []string{sap}}, c.Press(sap))
	assert.Equal(t, GestureView{Active: true, Touched: []string{sap, crm}}, c.Enter(crm))
	assert.Equal(t, []string{sap, crm}, c.Snapshot().Gesture.Touched)
	issued, err := c.Release(ctx)
	require.NoError(t, err)
	require.True(t, issued)
	assert.False(t, c.Gesture().Active)

	pending, ok := c.State().Agent("sap|salesforce")
	require.True(t, ok)
	assert.True(t, pending.IsPending())
	assert.Equal(t, PendingAgentName, pending.AgentName)
	assert.Equal(t, PendingDescription, pending.Description)
	assert.Len(t, c.State().Agents, vendor+1)

	close(release)
	c.Wait()

	agent, ok := c.State().Agent("sap|salesforce")
	require.True(t, ok)
	assert.False(t, agent.IsPending())
	assert.Equal(t, "Quote-to-Cash Agent", agent.AgentName)
	assert.Len(t, c.State().Agents, vendor+1)

	view := c.Snapshot()
	assert.Len(t, view.Layout.Agents, vendor+1)
	assert.NotEmpty(t, view.Layout.Flows)
	assert.Equal(t, len(c.State().ResolvedAgents()), view.Metrics.TotalAgents)
}

// A failed generation removes its placeholder.
func TestScenario_GenerationFails(t *testing.T) {
	backend := &fakeBackend{
		generate: func(context.Context, service.AgentRequest) (*domain.AgentConcept, error) {
			return nil, errors.New("OpenAI returned an empty response.")
		},
	}
	c := confirmedController(t, backend, 5, Options{})

	issued, err := c.RequestAgent(context.Background(), []string{"Workday", "Slack"}, RequestOptions{})
	require.NoError(t, err)
	require.True(t, issued)
	c.Wait()

	_, ok := c.State().Agent("slack|workday")
	assert.False(t, ok)
	assert.Empty(t, c.State().Agents)
	assert.Equal(t, "OpenAI returned an empty response.", c.State().Error)
}

// Requesting an existing combination again is suppressed unless duplicates
// are allowed.
func TestScenario_DuplicateSuppressed(t *testing.T) {
	backend := &fakeBackend{}
	c := confirmedController(t, backend, 5, Options{})
	ctx := context.Background()

	issued, err := c.RequestAgent(ctx, []string{"Workday", "Slack"}, RequestOptions{})
	require.NoError(t, err)
	require.True(t, issued)
	c.Wait()
	require.Equal(t, 1, backend.calls())

	issued, err = c.RequestAgent(ctx, []string{"Slack", "Workday"}, RequestOptions{})
	require.NoError(t, err)
	assert.False(t, issued)
	c.Wait()
	assert.Equal(t, 1, backend.calls())
	assert.Len(t, c.State().Agents, 1)

	issued, err = c.RequestAgent(ctx, []string{"Slack", "Workday"}, RequestOptions{AllowDuplicate: true})
	require.NoError(t, err)
	assert.True(t, issued)
	c.Wait()
	assert.Equal(t, 2, backend.calls())
	assert.Len(t, c.State().Agents, 1)
}

func TestController_RequestValidation(t *testing.T) {
	backend := &fakeBackend{}
	c := confirmedController(t, backend, 5, Options{})

	_, err := c.RequestAgent(context.Background(), []string{"Slack", " slack "}, RequestOptions{})
	assert.ErrorIs(t, err, domain.ErrTooFewPlatforms)
	assert.Equal(t, "Select at least two solutions to form an agent concept.", c.State().Error)

	issued, err := c.RequestAgent(context.Background(), []string{"A1", "B1", "C1", "D1"}, RequestOptions{})
	require.NoError(t, err)
	assert.True(t, issued)
	c.Wait()
	assert.Equal(t, []string{"A1", "B1", "C1"}, backend.requests[0].Solutions)
}

func TestController_CompleteGestureDiscards(t *testing.T) {
	backend := &fakeBackend{}
	c := confirmedController(t, backend, 5, Options{})
	slack := platformID(t, c, "Slack")

	issued, err := c.CompleteGesture(context.Background(), []string{slack, "unknown"})
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Zero(t, backend.calls())
	assert.Empty(t, c.State().Error)
}

func TestController_StaleResultDropped(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		generate: func(_ context.Context, req service.AgentRequest) (*domain.AgentConcept, error) {
			<-release
			return &domain.AgentConcept{AgentName: "Late", Solutions: req.Solutions}, nil
		},
	}
	c := confirmedController(t, backend, 5, Options{})
	ctx := context.Background()

	_, err := c.RequestAgent(ctx, []string{"Workday", "Slack"}, RequestOptions{})
	require.NoError(t, err)

	// a new search starts over before the agent arrives
	require.NoError(t, c.Search(ctx, "Globex"))
	close(release)
	c.Wait()

	assert.Equal(t, PhaseReviewing, c.State().Phase)
	assert.Empty(t, c.State().Agents)
}

func TestController_SearchErrors(t *testing.T) {
	c := newController(t, &fakeBackend{discoverErr: errors.New("Perplexity request failed: 401")}, Options{})

	err := c.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, service.ErrCompanyRequired)
	assert.Equal(t, "Please enter a company name to explore.", c.State().Error)

	err = c.Search(context.Background(), "Acme")
	require.Error(t, err)
	assert.Equal(t, "Perplexity request failed: 401", c.State().Error)
	assert.Equal(t, PhaseIdle, c.State().Phase)
}

func TestController_AutoSeedSequential(t *testing.T) {
	var inflight, peak atomic.Int32
	backend := &fakeBackend{
		generate: func(_ context.Context, req service.AgentRequest) (*domain.AgentConcept, error) {
			n := inflight.Add(1)
			defer inflight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			if req.Solutions[0] == "Workday" {
				return nil, errors.New("seed failed")
			}
			return &domain.AgentConcept{AgentName: "Seeded", Solutions: req.Solutions}, nil
		},
	}

	var events atomic.Int32
	hm := hooks.NewManager(logging.New(nil, "silent"))
	hm.On(hooks.EventAgentPending, "count", func(context.Context, hooks.Payload) error {
		events.Add(1)
		return nil
	})

	c := confirmedController(t, backend, 6, Options{AutoSeed: true, SeedDelay: time.Millisecond, Hooks: hm})
	c.Wait()
	hm.Wait()

	assert.Equal(t, 3, backend.calls(), "six platforms seed three pairs")
	assert.Equal(t, int32(1), peak.Load())
	assert.Equal(t, int32(3), events.Load())
	assert.Empty(t, c.State().Error, "seeding is silent")
	assert.Len(t, c.State().ResolvedAgents(), 2)
}

func TestController_CloseStopsSeeding(t *testing.T) {
	backend := &fakeBackend{}
	c := confirmedController(t, backend, 5, Options{AutoSeed: true, SeedDelay: time.Hour})
	c.Close()
	assert.Zero(t, backend.calls())
}

func TestController_OnChange(t *testing.T) {
	var changes atomic.Int32
	backend := &fakeBackend{discovery: discovery("acme", sixPlatforms...)}
	c := newController(t, backend, Options{OnChange: func(State) { changes.Add(1) }})

	require.NoError(t, c.Search(context.Background(), "acme"))
	// reset and discovered
	assert.Equal(t, int32(2), changes.Load())

	require.Error(t, c.Dispatch(ToggleSelection{ID: "missing"}))
	assert.Equal(t, int32(2), changes.Load())
}
