package viewmodel

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/segmentio/ksuid"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
)

// InteractionResultMsg reports the outcome of a favourite/reblog/bookmark request.
type InteractionResultMsg struct {
	Owner    string
	TargetID string
	Kind     domain.Interaction
	On       bool
	Status   domain.Status // Server view of the target on success
	Err      error
}

type interactionKey struct {
	id   string
	kind domain.Interaction
}

// Interactions applies optimistic interaction toggles to a status slice and
// settles them when the server answers. A failed request restores the pre-tap
// flag and counter. While a toggle is in flight, further toggles of the same
// status and kind are dropped.
//
// Copies share the in-flight set, matching how Bubble Tea passes models by value.
type Interactions struct {
	owner    string
	inflight map[interactionKey]domain.InteractionSnapshot
}

// NewInteractions returns a reducer with its own owner tag.
func NewInteractions() Interactions {
	return Interactions{
		owner:    ksuid.New().String(),
		inflight: make(map[interactionKey]domain.InteractionSnapshot),
	}
}

// InFlight reports whether a toggle of kind on the target id awaits a response.
func (in Interactions) InFlight(targetID string, kind domain.Interaction) bool {
	_, ok := in.inflight[interactionKey{id: targetID, kind: kind}]
	return ok
}

// Pending returns the number of unanswered toggles.
func (in Interactions) Pending() int {
	return len(in.inflight)
}

// Begin flips kind on the status named by id (a boost resolves to the boosted
// post) everywhere it appears in statuses. ok is false when the status is
// unknown or a toggle for it is already in flight; statuses is then returned
// unchanged and no request must be sent.
func (in Interactions) Begin(statuses []domain.Status, id string, kind domain.Interaction) (next []domain.Status, msg InteractionResultMsg, ok bool) {
	target, found := domain.ResolveTarget(statuses, id)
	if !found {
		return statuses, InteractionResultMsg{}, false
	}
	k := interactionKey{id: target.ID, kind: kind}
	if _, busy := in.inflight[k]; busy {
		return statuses, InteractionResultMsg{}, false
	}
	prev := target.Snapshot(kind)
	want := target.Toggled(kind).Snapshot(kind)
	in.inflight[k] = prev

	next = applySnapshot(statuses, target.ID, kind, want)
	return next, InteractionResultMsg{Owner: in.owner, TargetID: target.ID, Kind: kind, On: want.On}, true
}

// Settle folds a result into statuses. Results issued by this reducer settle
// their pending toggle: errors restore the pre-tap snapshot, successes adopt the
// server's flag and counter. Successful results from other reducers only
// refresh matching statuses.
func (in Interactions) Settle(statuses []domain.Status, msg InteractionResultMsg) []domain.Status {
	k := interactionKey{id: msg.TargetID, kind: msg.Kind}
	prev, mine := in.inflight[k]
	if mine && msg.Owner == in.owner {
		delete(in.inflight, k)
		if msg.Err != nil {
			return applySnapshot(statuses, msg.TargetID, msg.Kind, prev)
		}
	}
	if msg.Err != nil || msg.Status.ID == "" {
		return statuses
	}
	server := msg.Status.Target()
	if server.ID != msg.TargetID {
		return statuses
	}
	return applySnapshot(statuses, msg.TargetID, msg.Kind, server.Snapshot(msg.Kind))
}

// Send returns the command performing the request described by msg.
func (in Interactions) Send(ctx context.Context, svc app.StatusService, msg InteractionResultMsg) tea.Cmd {
	return func() tea.Msg {
		st, err := svc.SetInteraction(ctx, msg.TargetID, msg.Kind, msg.On)
		msg.Status = st
		msg.Err = err
		return msg
	}
}

func applySnapshot(statuses []domain.Status, targetID string, kind domain.Interaction, snap domain.InteractionSnapshot) []domain.Status {
	next := make([]domain.Status, len(statuses))
	for i, st := range statuses {
		next[i], _ = st.MapTarget(targetID, func(s domain.Status) domain.Status {
			return s.Restore(kind, snap)
		})
	}
	return next
}
