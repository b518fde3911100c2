package media

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrStorageFailure wraps a failed write to the storage gateway.
	ErrStorageFailure = errors.New("media storage failed")
	// ErrMetadataFailure wraps a failed repository insert after the binary was stored.
	ErrMetadataFailure = errors.New("media metadata write failed")
	// ErrURLResolution wraps a failure to resolve the public URL of a stored record.
	ErrURLResolution = errors.New("media url resolution failed")
	// ErrMediaNotFound is returned when no record exists for an id.
	ErrMediaNotFound = errors.New("media not found")
	// ErrDuplicateMedia is returned when an id is already taken.
	ErrDuplicateMedia = errors.New("media id already exists")
	// ErrNotAFile marks a file field that arrived as plain text.
	ErrNotAFile = errors.New("file field is not a file")
	// ErrNotAString marks a text field that arrived with another type.
	ErrNotAString = errors.New("field is not a string")
	// ErrUploadTooLarge marks a request body that exceeded the transport cap.
	ErrUploadTooLarge = errors.New("upload exceeds request limit")
)

// FieldErrors maps a field name to its human-readable failures.
type FieldErrors map[string][]string

func (f FieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

// ValidationError is a rejected submission.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid submission: " + strings.Join(names, ", ")
}
