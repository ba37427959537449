package workflow

// Action is a collaborator call tracked on a session.
type Action string

const (
	ActionNaming       Action = "naming"
	ActionPresentation Action = "presentation"
	ActionHardlink     Action = "hardlink"
	ActionNFO          Action = "nfo"
	ActionUpload       Action = "upload"
)

var actions = []Action{ActionNaming, ActionPresentation, ActionHardlink, ActionNFO, ActionUpload}

// Status is the lifecycle position of an action.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// RequestState is the lifecycle of one action. Seq counts issued
// requests and only ever grows.
type RequestState struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Seq     uint64 `json:"seq"`
}

// Ticket identifies one issued request. Only the most recently issued
// ticket of an action may settle it; older ones are stale and their
// results are discarded.
type Ticket struct {
	Action Action
	Seq    uint64
}

// lifecycle holds the request state of every action. It is not safe for
// concurrent use; Session guards it.
type lifecycle map[Action]*RequestState

func newLifecycle() lifecycle {
	l := make(lifecycle, len(actions))
	for _, a := range actions {
		l[a] = &RequestState{Status: StatusIdle}
	}
	return l
}

func (l lifecycle) begin(a Action) Ticket {
	st := l.state(a)
	st.Seq++
	st.Status = StatusLoading
	st.Message = ""
	return Ticket{Action: a, Seq: st.Seq}
}

// settle moves a loading action to status. It returns false, changing
// nothing, when t is stale.
func (l lifecycle) settle(t Ticket, status Status, msg string) bool {
	st := l.state(t.Action)
	if st.Seq != t.Seq || st.Status != StatusLoading {
		return false
	}
	st.Status = status
	st.Message = msg
	return true
}

// reset returns a to idle and invalidates any ticket in flight.
func (l lifecycle) reset(a Action) {
	st := l.state(a)
	st.Seq++
	st.Status = StatusIdle
	st.Message = ""
}

func (l lifecycle) state(a Action) *RequestState {
	st, ok := l[a]
	if !ok {
		st = &RequestState{Status: StatusIdle}
		l[a] = st
	}
	return st
}

func (l lifecycle) snapshot() map[Action]RequestState {
	out := make(map[Action]RequestState, len(l))
	for a, st := range l {
		out[a] = *st
	}
	return out
}
