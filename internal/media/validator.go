package media

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

const maxTitleLength = 255

const (
	msgTitleRequired = "The title field is required."
	msgTitleTooLong  = "The title field must not be greater than 255 characters."
	msgTitleString   = "The title field must be a string."
	msgDescString    = "The description field must be a string."
	msgFileRequired  = "The file field is required."
	msgNotAFile      = "The file field must be a file."
	msgUploadFailed  = "The file failed to upload."
)

// Validator decides whether a submission is acceptable.
type Validator struct {
	maxKB int64
}

// NewValidator builds a Validator with an inclusive size ceiling in kilobytes.
func NewValidator(maxKB int64) *Validator {
	return &Validator{maxKB: maxKB}
}

// MaxBytes is the largest accepted upload.
func (v *Validator) MaxBytes() int64 {
	return v.maxKB * 1024
}

// Validate checks every field independently and accumulates failures. Only the
// first bytes of the file are consumed; Accepted.Content replays them.
func (v *Validator) Validate(sub Submission) (Accepted, error) {
	errs := FieldErrors{}

	// Fields after the cap were never read, so only the size is reportable.
	var maxErr *http.MaxBytesError
	if errors.Is(sub.FileErr, ErrUploadTooLarge) || errors.As(sub.FileErr, &maxErr) {
		errs.add("file", v.sizeMessage())
		return Accepted{}, &ValidationError{Fields: errs}
	}

	var title string
	if sub.Title != nil {
		title = strings.TrimSpace(*sub.Title)
	}
	switch {
	case sub.TitleErr != nil, !isText(title):
		errs.add("title", msgTitleString)
	case title == "":
		errs.add("title", msgTitleRequired)
	case utf8.RuneCountInString(title) > maxTitleLength:
		errs.add("title", msgTitleTooLong)
	}

	var description *string
	if sub.Description != nil {
		if d := strings.TrimSpace(*sub.Description); d != "" {
			description = &d
		}
	}
	if sub.DescriptionErr != nil || (description != nil && !isText(*description)) {
		errs.add("description", msgDescString)
	}

	accepted := Accepted{Title: title, Description: description}
	v.checkFile(sub, errs, &accepted)

	if len(errs) > 0 {
		return Accepted{}, &ValidationError{Fields: errs}
	}
	return accepted, nil
}

func (v *Validator) checkFile(sub Submission, errs FieldErrors, accepted *Accepted) {
	switch {
	case errors.Is(sub.FileErr, ErrNotAFile):
		errs.add("file", msgNotAFile)
		return
	case sub.FileErr != nil:
		errs.add("file", msgUploadFailed)
		return
	case sub.File == nil:
		errs.add("file", msgFileRequired)
		return
	case sub.File.Content == nil:
		errs.add("file", msgUploadFailed)
		return
	}

	detected, err := sniff(sub.File.Content)
	if err != nil {
		errs.add("file", msgUploadFailed)
		return
	}
	mediaType, ok := canonicalType(detected.mime)
	if !ok {
		errs.add("file", "The file field must be a file of type: "+strings.Join(AcceptedTypes, ", ")+".")
	}
	if sub.File.SizeBytes > v.MaxBytes() {
		errs.add("file", v.sizeMessage())
	}

	accepted.MediaType = mediaType
	accepted.Extension = detected.mime.Extension()
	accepted.SizeBytes = sub.File.SizeBytes
	accepted.Content = detected.content
}

func (v *Validator) sizeMessage() string {
	return fmt.Sprintf("The file field must not be greater than %d kilobytes.", v.maxKB)
}

// isText rejects bytes the metadata stores cannot hold as text.
func isText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
