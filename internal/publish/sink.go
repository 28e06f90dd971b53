// Package publish hands each published snapshot to downstream consumers.
package publish

import (
	"context"

	"bcrawatch/internal/model"
)

// Sink receives every snapshot the pipeline publishes. Errors are logged by
// the caller and never affect the published snapshot.
type Sink interface {
	Name() string
	Publish(ctx context.Context, snap *model.Snapshot) error
}
