package media

import "bytes"

// Minimal leading bytes that content detection recognises for each format.
var (
	jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngHead  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	gifHead  = []byte("GIF89a")
	webpHead = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
	mp4Head  = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isommp41")
	movHead  = []byte("\x00\x00\x00\x14ftypqt  \x00\x00\x00\x00qt  ")
	webmHead = []byte("\x1A\x45\xDF\xA3\x9F\x42\x82\x84webm")
	mkvHead  = []byte("\x1A\x45\xDF\xA3\x9F\x42\x82\x88matroska")
	heicHead = []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00mif1heic")
	heifHead = []byte("\x00\x00\x00\x18ftypmif1\x00\x00\x00\x00mif1heic")
	mp3Head  = []byte("ID3\x03\x00\x00\x00\x00\x00\x00")
	zipHead  = []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00")
	svgHead  = []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"></svg>`)
	textHead = []byte("hello, this is a plain text readme\n")
	jsHead   = []byte("#!/usr/bin/env node\nconsole.log('hi');\n")
)

// sample pads head to size bytes. Text formats pad with spaces so they stay text.
func sample(head []byte, size int, pad byte) []byte {
	out := bytes.Repeat([]byte{pad}, size)
	copy(out, head)
	return out
}

func binarySample(head []byte, size int) []byte {
	return sample(head, size, 0x00)
}

func textSample(head []byte, size int) []byte {
	return sample(head, size, ' ')
}

func strPtr(s string) *string {
	return &s
}
