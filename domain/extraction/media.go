package extraction

import "strings"

// DefaultMediaType is used for extensions missing from the media type table
const DefaultMediaType = "application/octet-stream"

// CandidateExtensions lists every output extension a backend may produce, in the
// order the resolver checks them
var CandidateExtensions = []string{
	".mp3",
	".m4a",
	".webm",
	".opus",
	".ogg",
	".flac",
	".wav",
	".mp4",
}

var mediaTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".webm": "audio/webm",
	".opus": "audio/opus",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".mp4":  "audio/mp4",
}

// MediaTypeFor returns the media type for a file extension (with or without the
// leading dot, case-insensitive)
func MediaTypeFor(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if mt, ok := mediaTypes[ext]; ok {
		return mt
	}
	return DefaultMediaType
}
