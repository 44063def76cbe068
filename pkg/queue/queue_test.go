package queue_test

import (
	"testing"
	"time"

	"github.com/yimu/filedepot/pkg/queue"
)

func TestWatermillMessageRoundtrip(t *testing.T) {
	payload := queue.FileStoredPayload{
		File: queue.FileRef{
			FileID:      "01J8ZK3V9Q6T4W2X8Y0A1B2C3D",
			Name:        "report.pdf",
			StorageKey:  "2026/08/30/7f3a-report.pdf",
			BackendKind: "s3",
			Bucket:      "fd-bucket",
			Size:        2048,
			ContentType: "application/pdf",
			Tags:        []string{"finance", "q3"},
		},
		Source: "upload",
	}

	msg, err := queue.NewWatermillMessage(queue.TopicFileStored, payload,
		queue.WithTraceID("trace-xyz"), queue.WithProducer("filedepot"))
	if err != nil {
		t.Fatalf("build message: %v", err)
	}

	if msg.UUID == "" {
		t.Error("message UUID is empty")
	}

	if got := msg.Metadata.Get("topic"); got != queue.TopicFileStored {
		t.Errorf("metadata topic = %q, want %q", got, queue.TopicFileStored)
	}

	if got := msg.Metadata.Get("trace_id"); got != "trace-xyz" {
		t.Errorf("metadata trace_id = %q, want trace-xyz", got)
	}

	env, err := queue.ParseWatermillMessage[queue.FileStoredPayload](msg)
	if err != nil {
		t.Fatalf("parse message: %v", err)
	}

	if env.Header.Topic != queue.TopicFileStored {
		t.Errorf("header topic = %q, want %q", env.Header.Topic, queue.TopicFileStored)
	}

	if env.Header.Producer != "filedepot" || env.Header.TraceID != "trace-xyz" {
		t.Errorf("header producer/trace = %q/%q", env.Header.Producer, env.Header.TraceID)
	}

	if env.Header.Version != queue.PayloadVersionV1 {
		t.Errorf("header version = %q, want %q", env.Header.Version, queue.PayloadVersionV1)
	}

	if env.Payload.File.FileID != payload.File.FileID {
		t.Errorf("payload file id = %q, want %q", env.Payload.File.FileID, payload.File.FileID)
	}

	if env.Payload.File.StorageKey != payload.File.StorageKey {
		t.Errorf("payload storage key = %q, want %q", env.Payload.File.StorageKey, payload.File.StorageKey)
	}

	if len(env.Payload.File.Tags) != 2 {
		t.Errorf("payload tags = %v, want 2 entries", env.Payload.File.Tags)
	}
}

func TestEventHeaderDefaults(t *testing.T) {
	before := time.Now().UTC()
	hdr := queue.NewEventHeader(queue.TopicFolderCreated)
	after := time.Now().UTC()

	if hdr.Topic != queue.TopicFolderCreated {
		t.Errorf("topic = %q, want %q", hdr.Topic, queue.TopicFolderCreated)
	}

	if hdr.Version != queue.PayloadVersionV1 {
		t.Errorf("version = %q, want %q", hdr.Version, queue.PayloadVersionV1)
	}

	if hdr.OccurredAt.Before(before) || hdr.OccurredAt.After(after) {
		t.Errorf("occurred_at %v outside [%v, %v]", hdr.OccurredAt, before, after)
	}

	if hdr.TraceID != "" || hdr.Producer != "" {
		t.Errorf("unexpected defaults: trace %q, producer %q", hdr.TraceID, hdr.Producer)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	raw := []byte(`{
		"header": {"topic": "fd.folder.deleted", "version": "v1", "occurred_at": "2026-08-30T10:00:00Z", "future_field": 1},
		"payload": {"folder": {"folder_id": "f1", "path": "/docs"}, "hard": true, "unknown": "x"}
	}`)

	env, err := queue.Decode[queue.FolderDeletedPayload](raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if env.Header.Topic != queue.TopicFolderDeleted {
		t.Errorf("topic = %q, want %q", env.Header.Topic, queue.TopicFolderDeleted)
	}

	if env.Payload.Folder.FolderID != "f1" {
		t.Errorf("folder id = %q, want f1", env.Payload.Folder.FolderID)
	}

	if !env.Payload.Hard {
		t.Error("hard flag lost in decode")
	}
}
