package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/asengupta/framesight/internal/analysis"
)

type fakeSink struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (f *fakeSink) Publish(ctx context.Context, partitionKey string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, partitionKey)
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeStore struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.objects[key] = body
	f.types[key] = contentType
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_Envelope(t *testing.T) {
	sink := &fakeSink{}
	p := NewPublisher(sink, "web-app", quietLogger())

	rec := &analysis.Record{
		Timestamp:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		QualityScore: 42,
	}
	p.Publish(context.Background(), rec)
	p.Publish(context.Background(), rec)

	if len(sink.payloads) != 2 {
		t.Fatalf("published %d records, want 2", len(sink.payloads))
	}

	var env recordEnvelope
	if err := json.Unmarshal(sink.payloads[1], &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Source != "web-app" {
		t.Errorf("source = %q, want web-app", env.Source)
	}
	if env.FrameID != 2 {
		t.Errorf("frame id = %d, want 2", env.FrameID)
	}
	if env.SessionID != p.SessionID() {
		t.Errorf("session id = %q, want %q", env.SessionID, p.SessionID())
	}
	if env.Analysis == nil || env.Analysis.QualityScore != 42 {
		t.Errorf("analysis payload not carried: %+v", env.Analysis)
	}
	if env.Timestamp != rec.Timestamp.UnixMilli() {
		t.Errorf("timestamp = %d, want %d", env.Timestamp, rec.Timestamp.UnixMilli())
	}
}

func TestPublisher_SinkFailureIsDropped(t *testing.T) {
	sink := &fakeSink{err: errors.New("stream throttled")}
	p := NewPublisher(sink, "web-app", quietLogger())

	// Must not panic or surface the error.
	p.Publish(context.Background(), &analysis.Record{Timestamp: time.Now()})
}

func TestPublisher_NilSink(t *testing.T) {
	p := NewPublisher(nil, "web-app", quietLogger())
	p.Publish(context.Background(), &analysis.Record{Timestamp: time.Now()})
}

func TestUploader_UploadFrameWithAnalysis(t *testing.T) {
	store := newFakeStore()
	u := NewUploader(store, quietLogger())

	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	rec := &analysis.Record{Timestamp: ts, QualityScore: 10}

	key, err := u.UploadFrame(context.Background(), ts, []byte("jpeg-bytes"), rec)
	if err != nil {
		t.Fatalf("UploadFrame: %v", err)
	}

	if key != "frames/frame_20240501_103000.jpg" {
		t.Errorf("frame key = %q", key)
	}
	if store.types[key] != "image/jpeg" {
		t.Errorf("frame content type = %q, want image/jpeg", store.types[key])
	}

	analysisKey := "analysis/analysis_20240501_103000.json"
	if _, ok := store.objects[analysisKey]; !ok {
		t.Errorf("analysis sibling %q not uploaded", analysisKey)
	}
	if store.types[analysisKey] != "application/json" {
		t.Errorf("analysis content type = %q, want application/json", store.types[analysisKey])
	}
}

func TestUploader_FrameUploadFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("bucket gone")
	u := NewUploader(store, quietLogger())

	if _, err := u.UploadFrame(context.Background(), time.Now(), []byte("jpeg"), nil); err == nil {
		t.Error("expected frame upload error to surface")
	}
}
