package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/restream/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTranscriptStored is emitted after a new transcript is persisted.
	EventTypeTranscriptStored = "restream.transcript.stored"
)

// TranscriptStoredEvent is a transport-neutral event payload for a stored
// transcript. It carries the reconstruction summary, not the raw input.
type TranscriptStoredEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Source        EventSource    `json:"source"`
	Transcript    TranscriptMeta `json:"transcript"`
}

// EventSource identifies where the transcript came from.
type EventSource struct {
	Origin   string `json:"origin"`
	Provider string `json:"provider,omitempty"`
}

// TranscriptMeta summarizes the stored reconstruction.
type TranscriptMeta struct {
	Hash          string    `json:"hash"`
	Model         *string   `json:"model,omitempty"`
	FinishReason  *string   `json:"finish_reason,omitempty"`
	ChunkCount    int       `json:"chunk_count"`
	ErrorCount    int       `json:"error_count"`
	ContentLength int       `json:"content_length"`
	StoredAt      time.Time `json:"stored_at"`
}

// NewTranscriptStoredEvent builds the event announcing t.
func NewTranscriptStoredEvent(t *storage.Transcript) *TranscriptStoredEvent {
	meta := TranscriptMeta{
		Hash:       t.Hash,
		ChunkCount: t.ChunkCount,
		ErrorCount: t.ErrorCount,
		StoredAt:   t.CreatedAt,
	}

	if r := t.Result; r != nil {
		meta.ContentLength = len(r.Content)
		if r.Metadata != nil {
			meta.Model = r.Metadata.Model
			meta.FinishReason = r.Metadata.FinishReason
		}
	}

	return &TranscriptStoredEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTranscriptStored,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source: EventSource{
			Origin:   t.Source,
			Provider: t.Provider,
		},
		Transcript: meta,
	}
}
