package toolx

import "github.com/Abraxas-365/debelu/pkg/chat/framex"

// Registry holds the invocations of one turn keyed by call id, in the
// order their calls were first seen. It has a single owner, the routine
// processing the turn, and is not safe for concurrent use. Readers get
// copies through Snapshot.
type Registry struct {
	order   []string
	byID    map[string]Invocation
	orphans int
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Invocation)}
}

// Call records a tool call. A repeated call id overwrites the tool name and
// arguments but keeps its position and never regresses a Resulted state.
func (r *Registry) Call(f framex.ToolCall) Invocation {
	prev, exists := r.byID[f.CallID]
	inv := Called(f.CallID, f.ToolName, f.Args)
	if exists {
		inv.result = prev.result
	} else {
		r.order = append(r.order, f.CallID)
	}
	r.byID[f.CallID] = inv
	return inv
}

// Resolve attaches a result to a previously called invocation. Results for
// unknown call ids are dropped and reported with ok == false.
func (r *Registry) Resolve(f framex.ToolResult) (inv Invocation, ok bool) {
	prev, exists := r.byID[f.CallID]
	if !exists {
		r.orphans++
		return Invocation{}, false
	}
	inv = prev.Resolved(f.Result)
	r.byID[f.CallID] = inv
	return inv, true
}

// Get returns a copy of the invocation for callID.
func (r *Registry) Get(callID string) (Invocation, bool) {
	inv, ok := r.byID[callID]
	if !ok {
		return Invocation{}, false
	}
	return inv.clone(), true
}

// Snapshot returns an independent, insertion-ordered copy of every
// invocation. The result is never nil.
func (r *Registry) Snapshot() []Invocation {
	out := make([]Invocation, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].clone())
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// Orphans counts results dropped because their call was never seen.
func (r *Registry) Orphans() int { return r.orphans }

// Reset discards every invocation so the registry can serve the next turn.
func (r *Registry) Reset() {
	r.order = nil
	r.byID = make(map[string]Invocation)
	r.orphans = 0
}
