package metrics

import (
	"sync"
	"time"

	"bcrawatch/logger"
)

// Event is one metric observation. Fields never carry the metric name, kind or
// value; those live in the dedicated struct fields.
type Event struct {
	At        time.Time
	Component string
	Name      string
	Value     interface{}
	Kind      string
	Fields    logger.Fields
}

// Handler consumes events emitted through EmitMetric.
type Handler func(Event)

type subscribers struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[uint64]Handler
}

var (
	subs    = &subscribers{handlers: make(map[uint64]Handler)}
	timeNow = time.Now
)

// Subscribe adds h to the fan-out of every emitted event and returns the
// function that removes it again.
func Subscribe(h Handler) (unsubscribe func()) {
	if h == nil {
		return func() {}
	}

	subs.mu.Lock()
	subs.next++
	id := subs.next
	subs.handlers[id] = h
	subs.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			subs.mu.Lock()
			delete(subs.handlers, id)
			subs.mu.Unlock()
		})
	}
}

func (s *subscribers) deliver(e Event) {
	s.mu.RLock()
	handlers := make([]Handler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// EmitMetric logs the event at debug level and hands it to every subscriber.
// Events without a name are ignored; an empty kind defaults to "counter".
func EmitMetric(log *logger.Log, component, name string, value interface{}, kind string, fields logger.Fields) {
	if name == "" {
		return
	}
	if kind == "" {
		kind = "counter"
	}
	if log == nil {
		log = logger.GetLogger()
	}

	e := Event{
		At:        timeNow(),
		Component: component,
		Name:      name,
		Value:     value,
		Kind:      kind,
		Fields:    copyFields(fields),
	}

	entry := log.WithComponent(component).WithFields(e.Fields)
	entry.WithFields(logger.Fields{"metric": name, "metric_type": kind, "value": value}).Debug("metric")

	subs.deliver(e)
}

func copyFields(fields logger.Fields) logger.Fields {
	out := make(logger.Fields, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
