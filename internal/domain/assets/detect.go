package assets

import (
	"path/filepath"
	"strings"
)

// extension → kind table; keep lowercase keys
var extKinds = map[string]Kind{
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".webp": KindImage,
	".svg":  KindImage,

	".mp4":  KindVideo,
	".mov":  KindVideo,
	".webm": KindVideo,
	".mkv":  KindVideo,
	".avi":  KindVideo,

	".pdf":  KindDocument,
	".doc":  KindDocument,
	".docx": KindDocument,
	".txt":  KindDocument,
	".md":   KindDocument,

	".ppt":  KindPresentation,
	".pptx": KindPresentation,
	".key":  KindPresentation,

	".mp3":  KindPodcast,
	".wav":  KindPodcast,
	".m4a":  KindPodcast,
	".ogg":  KindPodcast,
	".flac": KindPodcast,
}

// KindFromFilename maps a file extension to an asset kind.
// Unknown extensions default to document so the review can still run list-only.
func KindFromFilename(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if k, ok := extKinds[ext]; ok {
		return k
	}
	return KindDocument
}

// KindFromContentType maps a MIME type to an asset kind, falling back to the
// filename when the type is generic (octet-stream or empty).
func KindFromContentType(contentType, filename string) Kind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	switch {
	case strings.HasPrefix(ct, "image/"):
		return KindImage
	case strings.HasPrefix(ct, "video/"):
		return KindVideo
	case strings.HasPrefix(ct, "audio/"):
		return KindPodcast
	case ct == "application/pdf", strings.HasPrefix(ct, "text/"):
		return KindDocument
	case strings.Contains(ct, "presentation"), strings.Contains(ct, "powerpoint"):
		return KindPresentation
	case strings.Contains(ct, "msword"), strings.Contains(ct, "wordprocessing"):
		return KindDocument
	}
	return KindFromFilename(filename)
}

// ValidKind checks an externally supplied kind string
func ValidKind(s string) bool {
	switch Kind(strings.ToLower(s)) {
	case KindImage, KindVideo, KindDocument, KindPresentation, KindPodcast:
		return true
	}
	return false
}
