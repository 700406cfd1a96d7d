package dynobject

import (
	"reflect"

	"github.com/rs/zerolog"
)

// Op names an observed operation.
type Op string

// Observed operations.
const (
	OpCreate  Op = "create"
	OpSet     Op = "set"
	OpRemove  Op = "remove"
	OpAcquire Op = "acquire"
	OpRelease Op = "release"
	OpDestroy Op = "destroy"
)

// Event describes one completed operation. Err is the error the operation
// returned to its caller, if any. Key and Type are unset for handle events.
type Event struct {
	Op     Op
	Handle string
	Key    any
	Type   reflect.Type
	Err    error
}

// Observer is notified after operations complete. Observers cannot change
// the outcome and must not call back into the store.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

// LogObserver writes events to a zerolog logger at debug level. Failed
// operations carry the error field.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver returns an observer writing to log.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// Observe implements Observer.
func (l *LogObserver) Observe(e Event) {
	ev := l.log.Debug().Str("op", string(e.Op))
	if e.Handle != "" {
		ev = ev.Str("handle", e.Handle)
	}
	if e.Key != nil {
		ev = ev.Interface("key", e.Key)
	}
	if e.Type != nil {
		ev = ev.Stringer("type", e.Type)
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
	}
	ev.Msg("dynobject")
}
