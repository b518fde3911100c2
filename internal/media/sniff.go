package media

import (
	"bytes"
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLimit matches mimetype's default read limit.
const sniffLimit = 3072

// AcceptedTypes lists the media types an upload may sniff to.
var AcceptedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"video/mp4",
	"video/quicktime",
	"video/webm",
}

// sniffed is the outcome of content detection. The returned reader replays
// the bytes consumed while sniffing.
type sniffed struct {
	mime    *mimetype.MIME
	content io.Reader
}

func sniff(r io.Reader) (sniffed, error) {
	head := make([]byte, sniffLimit)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return sniffed{}, err
	}
	head = head[:n]
	return sniffed{
		mime:    mimetype.Detect(head),
		content: io.MultiReader(bytes.NewReader(head), r),
	}, nil
}

// canonicalType returns the accepted type m matches, including aliases.
func canonicalType(m *mimetype.MIME) (string, bool) {
	for _, t := range AcceptedTypes {
		if m.Is(t) {
			return t, true
		}
	}
	return "", false
}
