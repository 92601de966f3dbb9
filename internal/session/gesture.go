package session

import "github.com/soyeahso/meshbuilder/internal/domain"

// Gesture tracks a press-drag-release across platform nodes.
type Gesture struct {
	active bool
	ids    []string
}

// Press starts a new gesture on id.
func (g *Gesture) Press(id string) {
	g.active = true
	g.ids = g.ids[:0]
	g.add(id)
}

// Enter adds id to an active gesture.
func (g *Gesture) Enter(id string) {
	if g.active {
		g.add(id)
	}
}

func (g *Gesture) add(id string) {
	if id == "" || len(g.ids) >= domain.MaxAgentPlatforms {
		return
	}
	for _, have := range g.ids {
		if have == id {
			return
		}
	}
	g.ids = append(g.ids, id)
}

// Active reports whether a gesture is in progress.
func (g *Gesture) Active() bool {
	return g.active
}

// GestureView is the in-progress gesture as shown to clients.
type GestureView struct {
	Active  bool     `json:"active"`
	Touched []string `json:"touched"`
}

func (g *Gesture) view() GestureView {
	return GestureView{Active: g.Active(), Touched: g.Touched()}
}

// Touched returns the ids collected so far.
func (g *Gesture) Touched() []string {
	return append([]string(nil), g.ids...)
}

// Release ends the gesture and returns the touched ids, or nil when fewer
// than two distinct nodes were touched.
func (g *Gesture) Release() []string {
	defer func() {
		g.active = false
		g.ids = nil
	}()
	if !g.active || len(g.ids) < domain.MinAgentPlatforms {
		return nil
	}
	return append([]string(nil), g.ids...)
}
