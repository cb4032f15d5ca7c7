// Package entities contains core business entities.
// These are pure domain objects: messages, citations, the upload session and
// the conversation thread. No knowledge of HTTP, rendering or storage.
package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageKind identifies who produced a message.
type MessageKind int

const (
	KindUser MessageKind = iota
	KindAssistant
	KindSystem
	KindError
)

func (k MessageKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAssistant:
		return "assistant"
	case KindSystem:
		return "system"
	case KindError:
		return "error"
	}
	return fmt.Sprintf("MessageKind(%d)", int(k))
}

// MarshalText encodes the kind as its lower-case name.
func (k MessageKind) MarshalText() ([]byte, error) {
	switch k {
	case KindUser, KindAssistant, KindSystem, KindError:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown message kind %d", int(k))
}

// UnmarshalText decodes a lower-case kind name.
func (k *MessageKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "user":
		*k = KindUser
	case "assistant":
		*k = KindAssistant
	case "system":
		*k = KindSystem
	case "error":
		*k = KindError
	default:
		return fmt.Errorf("unknown message kind %q", text)
	}
	return nil
}

// Message is a single turn in the conversation.
// Immutable once appended to a Thread.
type Message struct {
	ID        string      `json:"id"`
	Kind      MessageKind `json:"kind"`
	Content   string      `json:"content"`
	Sources   []Citation  `json:"sources,omitempty"` // only set on assistant messages
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserMessage creates a question turn.
func NewUserMessage(question string, now time.Time) Message {
	return newMessage(KindUser, question, nil, now)
}

// NewAssistantMessage creates an answer turn carrying its citations.
func NewAssistantMessage(answer string, sources []Citation, now time.Time) Message {
	var owned []Citation
	if len(sources) > 0 {
		owned = make([]Citation, len(sources))
		copy(owned, sources)
	}
	return newMessage(KindAssistant, answer, owned, now)
}

// NewSystemMessage creates a notice turn.
func NewSystemMessage(notice string, now time.Time) Message {
	return newMessage(KindSystem, notice, nil, now)
}

// NewErrorMessage creates a failure turn.
func NewErrorMessage(reason string, now time.Time) Message {
	return newMessage(KindError, reason, nil, now)
}

func newMessage(kind MessageKind, content string, sources []Citation, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Kind:      kind,
		Content:   content,
		Sources:   sources,
		CreatedAt: now,
	}
}

// HasSources reports whether the message carries citations.
func (m Message) HasSources() bool {
	return len(m.Sources) > 0
}

// UploadStatus is the lifecycle state of the upload session.
type UploadStatus int

const (
	UploadIdle UploadStatus = iota
	UploadUploading
	UploadReady
	UploadFailed
)

func (s UploadStatus) String() string {
	switch s {
	case UploadIdle:
		return "idle"
	case UploadUploading:
		return "uploading"
	case UploadReady:
		return "ready"
	case UploadFailed:
		return "failed"
	}
	return fmt.Sprintf("UploadStatus(%d)", int(s))
}

func (s UploadStatus) MarshalText() ([]byte, error) {
	switch s {
	case UploadIdle, UploadUploading, UploadReady, UploadFailed:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("unknown upload status %d", int(s))
}

func (s *UploadStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = UploadIdle
	case "uploading":
		*s = UploadUploading
	case "ready":
		*s = UploadReady
	case "failed":
		*s = UploadFailed
	default:
		return fmt.Errorf("unknown upload status %q", text)
	}
	return nil
}

// UploadSession tracks the single live document.
// FileName, ChunksCreated and VectorsStored describe the last successful
// upload; a failed re-upload changes Status only.
type UploadSession struct {
	FileName      string       `json:"file_name"`
	ChunksCreated int          `json:"chunks_created"`
	VectorsStored int          `json:"vectors_stored"`
	Status        UploadStatus `json:"status"`
}

// HasDocument reports whether a successful upload has been recorded.
func (u UploadSession) HasDocument() bool {
	return u.FileName != ""
}

// FileUpload is a raw document payload handed to the ingestion call.
type FileUpload struct {
	Name string
	Data []byte
}

// IngestResult is the processing metadata returned by the ingestion call.
type IngestResult struct {
	ChunksCreated int
	VectorsStored int
}

// QueryRequest is the body of the query call.
type QueryRequest struct {
	Question string
	TopK     int
}

// QueryResponse is the answer plus its supporting passages.
// Scores are as reported by the backend and not yet validated.
type QueryResponse struct {
	Answer  string
	Sources []Citation
}

// BackendHealth is the reply of the backend health check.
type BackendHealth struct {
	Status     string `json:"status"`
	Pinecone   string `json:"pinecone,omitempty"`
	Embeddings string `json:"embeddings,omitempty"`
}

// Healthy reports whether the backend declared itself healthy.
func (h BackendHealth) Healthy() bool {
	return h.Status == "healthy" || h.Status == "ok"
}
