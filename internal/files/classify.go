package files

import (
	"path/filepath"
	"strings"
)

// ViewerKind tells the file viewer how to present an attachment.
type ViewerKind string

const (
	ViewerImage   ViewerKind = "image"
	ViewerPDF     ViewerKind = "pdf"
	ViewerVideo   ViewerKind = "video"
	ViewerAudio   ViewerKind = "audio"
	ViewerGeneric ViewerKind = "generic"
)

var viewerKinds = map[string]ViewerKind{
	"jpg": ViewerImage, "jpeg": ViewerImage, "png": ViewerImage,
	"gif": ViewerImage, "webp": ViewerImage, "svg": ViewerImage,
	"pdf": ViewerPDF,
	"mp4": ViewerVideo, "webm": ViewerVideo,
	"mp3": ViewerAudio, "wav": ViewerAudio, "ogg": ViewerAudio,
}

// office formats get a download button instead of an inline preview
var downloadable = map[string]bool{
	"docx": true, "doc": true, "xlsx": true, "xls": true, "csv": true,
}

// Classify maps a file name to its viewer kind and whether the viewer
// should offer a download.
func Classify(name string) (ViewerKind, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	kind, ok := viewerKinds[ext]
	if !ok {
		kind = ViewerGeneric
	}
	return kind, downloadable[ext]
}
