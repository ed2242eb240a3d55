package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/wirenest/roomcast/internal/core"
	"github.com/wirenest/roomcast/internal/metrics"
)

// DispatchPolicy selects how an inbound event fans out.
type DispatchPolicy int

const (
	// PolicyRelay forwards the payload verbatim to everyone else in the
	// room, tagged with the sender identity.
	PolicyRelay DispatchPolicy = iota
	// PolicyEcho rebuilds a normalized {user, text} message from the
	// payload and broadcasts it to the whole room, sender included.
	PolicyEcho
)

// Event names on the wire, preserved from the collaboration app.
const (
	EventRelay       = "project-message"
	EventSendMessage = "sendMessage"
	EventMessage     = "message"
)

// ChatMessage is the normalized object the echo policy broadcasts.
// User always comes from the authenticated sender, never from payload.
type ChatMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// Router fans inbound events out to room members according to the
// policy registered for each event name.
type Router struct {
	Registry *core.Registry
	policies map[string]DispatchPolicy
}

func NewRouter(registry *core.Registry) *Router {
	return &Router{
		Registry: registry,
		policies: map[string]DispatchPolicy{
			EventRelay:       PolicyRelay,
			EventSendMessage: PolicyEcho,
		},
	}
}

// Register binds an event name to a dispatch policy, replacing any
// previous binding.
func (rt *Router) Register(event string, p DispatchPolicy) {
	rt.policies[event] = p
}

// Route delivers one inbound event. Unknown event names are dropped;
// per-recipient failures are counted, never propagated to the sender.
func (rt *Router) Route(src *core.Session, event string, payload json.RawMessage) core.DeliveryResult {
	policy, ok := rt.policies[event]
	if !ok {
		log.Warn().Str("module", "app.router").Str("event", event).
			Str("sid", string(src.ID)).Msg("unknown event")
		return core.DeliveryResult{}
	}
	metrics.EventsRouted.WithLabelValues(event).Inc()

	var (
		frame   core.Frame
		exclude bool
		err     error
	)
	switch policy {
	case PolicyRelay:
		frame, err = core.Envelope{Event: event, Sender: src.User.Name, Payload: payload}.Encode()
		exclude = true
	case PolicyEcho:
		var in struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(payload, &in); err != nil {
			log.Warn().Str("module", "app.router").Err(err).
				Str("sid", string(src.ID)).Msg("bad chat payload")
			return core.DeliveryResult{}
		}
		body, merr := json.Marshal(ChatMessage{User: src.User.Name, Text: in.Text})
		if merr != nil {
			return core.DeliveryResult{}
		}
		frame, err = core.Envelope{Event: EventMessage, Payload: body}.Encode()
	}
	if err != nil {
		log.Error().Str("module", "app.router").Err(err).Msg("encode frame")
		return core.DeliveryResult{}
	}

	res := rt.Registry.Broadcast(src.Room, src.ID, frame, exclude)
	if res.Dropped > 0 {
		metrics.DeliveriesDropped.Add(float64(res.Dropped))
	}
	return res
}
