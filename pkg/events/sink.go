package events

import (
	"encoding/json"

	"github.com/go-go-golems/actionrunner/pkg/alert"
	"github.com/rs/zerolog/log"
)

// Sink receives decoded bus events. Nil fields are skipped.
type Sink struct {
	OnActionUpdate  func(ActionUpdate)
	OnAlert         func(alert.ActionAlert)
	OnSupabaseAlert func(alert.SupabaseAlert)
	OnDeployAlert   func(alert.DeployAlert)
}

func RegisterSink(bus *Bus, name string, sink Sink) {
	bus.Subscribe(name+"-actions", TopicActions, func(env Envelope) {
		if env.Type != TypeActionUpdated || sink.OnActionUpdate == nil {
			return
		}
		var u ActionUpdate
		if decodePayload(env, &u) {
			sink.OnActionUpdate(u)
		}
	})

	bus.Subscribe(name+"-alerts", TopicAlerts, func(env Envelope) {
		switch env.Type {
		case TypeAlertAction:
			var a alert.ActionAlert
			if sink.OnAlert != nil && decodePayload(env, &a) {
				sink.OnAlert(a)
			}
		case TypeAlertSupabase:
			var a alert.SupabaseAlert
			if sink.OnSupabaseAlert != nil && decodePayload(env, &a) {
				sink.OnSupabaseAlert(a)
			}
		case TypeAlertDeploy:
			var a alert.DeployAlert
			if sink.OnDeployAlert != nil && decodePayload(env, &a) {
				sink.OnDeployAlert(a)
			}
		}
	})
}

func decodePayload(env Envelope, out any) bool {
	if err := json.Unmarshal(env.Payload, out); err != nil {
		log.Warn().Err(err).Str("type", env.Type).Msg("bad event payload")
		return false
	}
	return true
}
