// Package registry provides a fail-fast, one-entry-per-event-type lookup table
// built once at process start.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

var (
	ErrEmpty              = errors.New("registry: no handlers provided")
	ErrMissingEventName   = errors.New("registry: handler has no event name")
	ErrDuplicateEventName = errors.New("registry: duplicate event name")
)

// Named is implemented by anything that can be registered
type Named interface {
	EventName() string
}

// Registry maps event names to handlers. It is immutable after New and safe
// for concurrent reads.
type Registry[H Named] struct {
	handlers map[string]H
}

// New validates the handler list and builds the registry.
// Every problem found is reported, joined into one error.
func New[H Named](handlers ...H) (*Registry[H], error) {
	if len(handlers) == 0 {
		return nil, ErrEmpty
	}

	r := &Registry[H]{handlers: make(map[string]H, len(handlers))}

	var errs []error
	for i, h := range handlers {
		if isNil(h) {
			errs = append(errs, fmt.Errorf("%w: handler #%d is nil", ErrMissingEventName, i))
			continue
		}

		name := h.EventName()
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("%w: handler #%d (%T)", ErrMissingEventName, i, h))
			continue
		}

		if _, exists := r.handlers[name]; exists {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateEventName, name))
			continue
		}
		r.handlers[name] = h
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// MustNew is New that panics on error. Meant for wiring at startup.
func MustNew[H Named](handlers ...H) *Registry[H] {
	r, err := New(handlers...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the handler registered for the event type
func (r *Registry[H]) Get(eventType string) (H, bool) {
	h, ok := r.handlers[eventType]
	return h, ok
}

// EventNames returns the registered event names in sorted order
func (r *Registry[H]) EventNames() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered handlers
func (r *Registry[H]) Len() int {
	return len(r.handlers)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
