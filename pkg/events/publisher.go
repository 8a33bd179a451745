package events

import (
	"time"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/go-go-golems/actionrunner/pkg/runner"
	"github.com/rs/zerolog/log"
)

// ActionUpdate is the wire form of one state transition.
type ActionUpdate struct {
	ID       string        `json:"id"`
	At       time.Time     `json:"at"`
	Action   action.Spec   `json:"action"`
	Status   action.Status `json:"status"`
	Executed bool          `json:"executed"`
	Error    string        `json:"error,omitempty"`
}

// Publisher forwards runner state changes and alerts onto the bus.
type Publisher struct {
	bus *Bus
}

func NewPublisher(bus *Bus) *Publisher {
	return &Publisher{bus: bus}
}

var _ runner.Observer = (*Publisher)(nil)

func (p *Publisher) OnActionUpdate(id string, st action.State) {
	p.publish(TopicActions, TypeActionUpdated, ActionUpdate{
		ID:       id,
		At:       time.Now(),
		Action:   action.SpecOf(st.Action),
		Status:   st.Status,
		Executed: st.Executed,
		Error:    st.Error,
	})
}

func (p *Publisher) AlertHandlers() alert.Handlers {
	return alert.Handlers{
		OnAlert:         func(a alert.ActionAlert) { p.publish(TopicAlerts, TypeAlertAction, a) },
		OnSupabaseAlert: func(a alert.SupabaseAlert) { p.publish(TopicAlerts, TypeAlertSupabase, a) },
		OnDeployAlert:   func(a alert.DeployAlert) { p.publish(TopicAlerts, TypeAlertDeploy, a) },
	}
}

// publish is fire-and-forget; a failed publish is logged and dropped.
func (p *Publisher) publish(topic, typ string, payload any) {
	env, err := NewEnvelope(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("type", typ).Msg("build envelope")
		return
	}
	if err := p.bus.Publish(topic, env); err != nil {
		log.Error().Err(err).Str("type", typ).Msg("publish event")
	}
}
