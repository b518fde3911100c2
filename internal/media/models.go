package media

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Media is the persisted record of one ingested asset. It is never updated.
type Media struct {
	ID             uuid.UUID
	Title          string
	Description    *string
	StorageBackend string
	StorageKey     string
	MediaType      string
	SizeBytes      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Descriptor is the response shape for a stored Media record.
type Descriptor struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	MediaType   string    `json:"media_type"`
	SizeBytes   int64     `json:"size"`
	PublicURL   string    `json:"public_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func newDescriptor(m Media, publicURL string) Descriptor {
	return Descriptor{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		MediaType:   m.MediaType,
		SizeBytes:   m.SizeBytes,
		PublicURL:   publicURL,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

// Submission is the transport-neutral upload request handed to the pipeline.
type Submission struct {
	Title       *string
	Description *string
	File        *FileInput
	// TitleErr and DescriptionErr record a value that arrived with a non-string type.
	TitleErr       error
	DescriptionErr error
	// FileErr records a failure to decode the file field at the transport level.
	FileErr error
}

// FileInput is an uploaded binary as measured by the transport.
type FileInput struct {
	Filename     string
	DeclaredType string
	SizeBytes    int64
	Content      io.Reader
}

// Accepted is a submission that passed validation.
type Accepted struct {
	Title       string
	Description *string
	MediaType   string
	Extension   string
	SizeBytes   int64
	Content     io.Reader
}
