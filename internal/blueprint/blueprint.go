// Package blueprint defines the sprint/epic/story tree shape shared by the
// catalog, the instantiator and stored templates, together with its JSON
// codec and validation rules.
package blueprint

// Priorities a story definition may carry.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Tree is an ordered list of sprint definitions.
type Tree struct {
	Sprints []SprintDef `json:"sprints"`
}

// SprintDef describes one sprint and its epics.
type SprintDef struct {
	Name     string    `json:"name"`
	Goal     string    `json:"goal"`
	Duration string    `json:"duration"`
	Epics    []EpicDef `json:"epics"`
}

// EpicDef describes one epic. Code is the short prefix used for story
// codes and travels as "epic_id" on the wire.
type EpicDef struct {
	Code    string     `json:"epic_id"`
	Name    string     `json:"name"`
	Goal    string     `json:"goal"`
	Stories []StoryDef `json:"stories"`
}

// StoryDef describes one story.
type StoryDef struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Priority    string `json:"priority"`
	Prompt      string `json:"prompt"`
}

// Counts summarises the size of a tree.
type Counts struct {
	Sprints     int
	Epics       int
	Stories     int
	TotalPoints int
}

// Counts walks the tree and totals sprints, epics, stories and points.
func (t Tree) Counts() Counts {
	var c Counts
	c.Sprints = len(t.Sprints)
	for _, s := range t.Sprints {
		c.Epics += len(s.Epics)
		for _, e := range s.Epics {
			c.Stories += len(e.Stories)
			for _, st := range e.Stories {
				c.TotalPoints += st.Points
			}
		}
	}
	return c
}

// Points returns the sum of story points across all epics of the sprint.
func (s SprintDef) Points() int {
	total := 0
	for _, e := range s.Epics {
		for _, st := range e.Stories {
			total += st.Points
		}
	}
	return total
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	out := Tree{Sprints: make([]SprintDef, len(t.Sprints))}
	for i, s := range t.Sprints {
		s.Epics = cloneEpics(s.Epics)
		out.Sprints[i] = s
	}
	return out
}

func cloneEpics(in []EpicDef) []EpicDef {
	out := make([]EpicDef, len(in))
	for i, e := range in {
		e.Stories = append([]StoryDef(nil), e.Stories...)
		if e.Stories == nil {
			e.Stories = []StoryDef{}
		}
		out[i] = e
	}
	return out
}
