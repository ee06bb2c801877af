package events

import "encoding/json"

// Event name constants
const (
	StateChanged = "calibration.state"
)

// Event is a generic event published by the calibration flow.
type Event struct {
	Name string          // event name
	Data json.RawMessage // Raw JSON payload
}

// StateChangedEvent is the typed payload for calibration.state.
type StateChangedEvent struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message,omitempty"`
	Ts      int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// If Data is empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
