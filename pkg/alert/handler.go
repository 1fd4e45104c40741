package alert

import "context"

// Handler turns event data into one channel job.
// A missing recipient is a warning and a nil return, never an error.
type Handler interface {
	EventName() string
	Handle(ctx context.Context, data Data) error
}

// HandlerFunc is the function form of Handle
type HandlerFunc func(ctx context.Context, data Data) error

type funcHandler struct {
	name string
	fn   HandlerFunc
}

// NewHandler binds fn to an event name
func NewHandler(eventName string, fn HandlerFunc) Handler {
	return &funcHandler{name: eventName, fn: fn}
}

func (h *funcHandler) EventName() string { return h.name }

func (h *funcHandler) Handle(ctx context.Context, data Data) error {
	return h.fn(ctx, data)
}
