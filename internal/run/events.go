package run

// EventType tags one progress event emitted during a run.
type EventType string

const (
	EventRunStart     EventType = "run_start"
	EventModelStart   EventType = "model_start"
	EventChunk        EventType = "chunk"
	EventModelDone    EventType = "model_done"
	EventRunCancelled EventType = "run_cancelled"
	EventRunDone      EventType = "run_done"
)

// Event is one NDJSON progress line streamed to the presentation layer while
// the dispatch loop executes.
type Event struct {
	Type  EventType `json:"type"`
	Model string    `json:"model,omitempty"`
	// 1-based position of the model within the run.
	Index int `json:"index,omitempty"`
	Total int `json:"total,omitempty"`
	// Fragment text for chunk events.
	Text string `json:"text,omitempty"`
	// Accumulated response length in bytes.
	Length int `json:"length,omitempty"`
	// Completed fraction after this event.
	Progress float64 `json:"progress"`
	// True when the model's recorded response carries the error sentinel.
	Failed bool `json:"failed,omitempty"`
}

// EventSink receives progress events in emission order. A sink error is
// treated as a cancellation request: the loop stops dispatching. A nil sink
// discards events.
type EventSink func(Event) error
