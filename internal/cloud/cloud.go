// Package cloud forwards pipeline output to external collaborators: an
// object store for saved frames and a streaming sink for per-frame
// analysis records. Delivery is best effort; failures are logged and
// dropped, never surfaced back into the analysis pipeline.
package cloud

import "context"

// ObjectStore persists binary objects under timestamped keys.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
}

// RecordSink receives serialized analysis records keyed by a partition
// value derived from the record timestamp.
type RecordSink interface {
	Publish(ctx context.Context, partitionKey string, payload []byte) error
}
