package metrics

import (
	"bytes"
	"sync"
)

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func resetRefreshStats() {
	refreshes.success.Store(0)
	refreshes.partial.Store(0)
	refreshes.failed.Store(0)
	refreshes.skipped.Store(0)
	refreshes.lastMillis.Store(0)
	sourceErrors.Range(func(k, _ any) bool {
		sourceErrors.Delete(k)
		return true
	})
}
