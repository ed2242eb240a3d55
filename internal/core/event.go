package core

import "encoding/json"

// Envelope is the wire shape for events in both directions. Sender is
// set by the server from the authenticated session identity; anything a
// client puts there is discarded.
type Envelope struct {
	Event   string          `json:"event"`
	Sender  string          `json:"sender,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode marshals the envelope into a transport frame.
func (e Envelope) Encode() (Frame, error) {
	b, err := json.Marshal(e)
	return Frame(b), err
}
