package logger

import (
	"sync"
	"sync/atomic"
)

type levelCounts struct {
	warns  int64
	errors int64
}

// counts is keyed by component name.
var counts sync.Map

func componentCounts(component string) *levelCounts {
	v, _ := counts.LoadOrStore(component, &levelCounts{})
	return v.(*levelCounts)
}

func recordWarn(component string) {
	atomic.AddInt64(&componentCounts(component).warns, 1)
}

func recordError(component string) {
	atomic.AddInt64(&componentCounts(component).errors, 1)
}

// LevelCount is the number of warnings and errors logged by one component.
type LevelCount struct {
	Warns  int64
	Errors int64
}

// Counts returns warn/error totals per component for entries logged through
// WithComponent.
func Counts() map[string]LevelCount {
	out := make(map[string]LevelCount)
	counts.Range(func(k, v any) bool {
		c := v.(*levelCounts)
		out[k.(string)] = LevelCount{
			Warns:  atomic.LoadInt64(&c.warns),
			Errors: atomic.LoadInt64(&c.errors),
		}
		return true
	})
	return out
}
