package cloud

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/asengupta/framesight/internal/analysis"
)

// recordEnvelope is the wire format delivered to the streaming sink.
type recordEnvelope struct {
	Timestamp int64            `json:"timestamp_ms"`
	Analysis  *analysis.Record `json:"analysis"`
	Source    string           `json:"source"`
	SessionID string           `json:"session_id"`
	FrameID   int64            `json:"frame_id"`
}

// Publisher wraps a RecordSink with the per-session envelope and the
// fire-and-forget delivery policy: failures are logged and the record
// is dropped.
type Publisher struct {
	sink      RecordSink
	logger    *slog.Logger
	source    string
	sessionID string
	frameID   atomic.Int64
}

// NewPublisher creates a Publisher with a fresh session id. A nil sink
// yields a publisher that silently discards records.
func NewPublisher(sink RecordSink, source string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		sink:      sink,
		logger:    logger,
		source:    source,
		sessionID: uuid.NewString(),
	}
}

// Publish serializes the record and delivers it to the sink, keyed by
// the record timestamp. It never returns an error to the caller.
func (p *Publisher) Publish(ctx context.Context, rec *analysis.Record) {
	if p.sink == nil || rec == nil {
		return
	}

	env := recordEnvelope{
		Timestamp: rec.Timestamp.UnixMilli(),
		Analysis:  rec,
		Source:    p.source,
		SessionID: p.sessionID,
		FrameID:   p.frameID.Add(1),
	}

	payload, err := json.Marshal(env)
	if err != nil {
		p.logger.Warn("failed to serialize analysis record", "error", err)
		return
	}

	partitionKey := strconv.FormatInt(rec.Timestamp.UnixNano(), 10)
	if err := p.sink.Publish(ctx, partitionKey, payload); err != nil {
		p.logger.Warn("record sink delivery failed, dropping record", "error", err)
	}
}

// SessionID returns the publisher's session identifier.
func (p *Publisher) SessionID() string {
	return p.sessionID
}

// Object key naming for saved frames and their analysis siblings.
const keyTimestampLayout = "20060102_150405"

// FrameKey returns the object key for a frame captured at ts.
func FrameKey(ts time.Time) string {
	return "frames/frame_" + ts.Format(keyTimestampLayout) + ".jpg"
}

// AnalysisKey returns the object key for the analysis record that
// accompanies a frame captured at ts.
func AnalysisKey(ts time.Time) string {
	return "analysis/analysis_" + ts.Format(keyTimestampLayout) + ".json"
}

// Uploader stores frame snapshots and their analysis records as sibling
// objects. The frame upload error is returned so callers can report it;
// a failed analysis sibling is logged and skipped.
type Uploader struct {
	store  ObjectStore
	logger *slog.Logger
}

// NewUploader creates an Uploader over the given object store.
func NewUploader(store ObjectStore, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{store: store, logger: logger}
}

// UploadFrame uploads the JPEG-encoded frame and, when rec is non-nil,
// its serialized analysis record. It returns the frame's object key.
func (u *Uploader) UploadFrame(ctx context.Context, ts time.Time, jpeg []byte, rec *analysis.Record) (string, error) {
	key := FrameKey(ts)
	if err := u.store.PutObject(ctx, key, "image/jpeg", jpeg); err != nil {
		return "", err
	}

	if rec != nil {
		payload, err := json.Marshal(rec)
		if err == nil {
			err = u.store.PutObject(ctx, AnalysisKey(ts), "application/json", payload)
		}
		if err != nil {
			u.logger.Warn("failed to upload analysis sibling", "key", AnalysisKey(ts), "error", err)
		}
	}

	return key, nil
}
