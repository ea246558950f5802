package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samvad-hq/dirble-go/internal/domain"
)

type stubPublisher struct {
	id       string
	typ      string
	err      error
	closeErr error
	calls    int
	closed   bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}
func (s *stubPublisher) Close() error {
	s.closed = true
	return s.closeErr
}

func domainMeta(title string) domain.PageMeta {
	return domain.PageMeta{Title: title}
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	ok := &stubPublisher{id: "ok", typ: "http"}
	bad := &stubPublisher{id: "bad", typ: "sqs", err: errors.New("failed")}
	fanout := NewFanout([]Publisher{ok, nil, bad})

	if fanout.Size() != 2 {
		t.Fatalf("nil publishers should be skipped, size=%d", fanout.Size())
	}

	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil || !strings.Contains(err.Error(), "sqs publisher[bad]") {
		t.Fatalf("expected aggregated error naming the failing publisher, got %v", err)
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("every publisher should be called once: ok=%d bad=%d", ok.calls, bad.calls)
	}
}

func TestFanoutNilIsEmpty(t *testing.T) {
	var f *Fanout
	if n, err := f.Publish(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("nil fanout publish = %d, %v", n, err)
	}
	if f.Size() != 0 || f.Close() != nil {
		t.Fatalf("nil fanout should be inert")
	}
}

func TestFanoutCloseClosesPublishers(t *testing.T) {
	a := &stubPublisher{id: "a", typ: "pubsub"}
	b := &stubPublisher{id: "b", typ: "pubsub", closeErr: errors.New("close failed")}

	err := NewFanout([]Publisher{a, b}).Close()
	if !a.closed || !b.closed {
		t.Fatalf("expected both publishers closed")
	}
	if err == nil {
		t.Fatalf("expected close error to surface")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	pubs, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
		{ID: "stdout", Type: TypeLog},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 2 {
		t.Fatalf("expected 2 publishers, got %d", len(pubs))
	}
}

func TestBuildAllClosesOnFailure(t *testing.T) {
	built := &stubPublisher{id: "first", typ: "stub"}
	reg := NewRegistry(map[string]Builder{
		"stub": func(context.Context, PublisherConfig, Logger) (Publisher, error) { return built, nil },
		"fail": func(context.Context, PublisherConfig, Logger) (Publisher, error) { return nil, errors.New("nope") },
	})

	_, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "first", Type: "stub"},
		{ID: "second", Type: "fail"},
	}, nil)
	if err == nil || !strings.Contains(err.Error(), `"second"`) {
		t.Fatalf("expected build error for second publisher, got %v", err)
	}
	if !built.closed {
		t.Fatalf("already built publishers should be closed")
	}
}

func TestRegistryUnknownType(t *testing.T) {
	_, err := DefaultRegistry().PublisherFor(context.Background(), PublisherConfig{ID: "x", Type: "kafka"}, nil)
	if err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

type recordingLogger struct {
	noopLogger
	infos []string
}

func (r *recordingLogger) InfoObj(msg, _ string, _ interface{}) { r.infos = append(r.infos, msg) }

func TestLogPublisherWritesEvent(t *testing.T) {
	log := &recordingLogger{}
	pub, err := newLogPublisher(context.Background(), PublisherConfig{ID: "stdout", Type: TypeLog}, log)
	if err != nil {
		t.Fatalf("newLogPublisher: %v", err)
	}
	if err := pub.Publish(context.Background(), Event{FeedID: "f"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(log.infos) != 1 {
		t.Fatalf("expected one log line, got %d", len(log.infos))
	}
}
