package extraction

import (
	"fmt"
	"strings"
)

// SourceURLPrefix is prepended to a video identifier to build the remote source URL
const SourceURLPrefix = "https://www.youtube.com/watch?v="

// MaxIdentifierLength bounds the accepted identifier size
const MaxIdentifierLength = 64

// ExtractionRequest represents a request to extract audio from a remote video
type ExtractionRequest struct {
	VideoID string
}

// NewExtractionRequest creates a new ExtractionRequest with validation
func NewExtractionRequest(videoID string) (*ExtractionRequest, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}

	if len(videoID) > MaxIdentifierLength {
		return nil, fmt.Errorf("video ID exceeds %d characters", MaxIdentifierLength)
	}

	for _, r := range videoID {
		if !isIdentifierRune(r) {
			return nil, fmt.Errorf("video ID contains invalid character %q", r)
		}
	}

	return &ExtractionRequest{VideoID: videoID}, nil
}

// SourceURL returns the URL handed to the extraction backend
func (r *ExtractionRequest) SourceURL() string {
	return SourceURLPrefix + r.VideoID
}

// SuggestedFilename returns the download filename in audio_<id><ext> format
func (r *ExtractionRequest) SuggestedFilename(ext string) string {
	return "audio_" + r.VideoID + ext
}

func isIdentifierRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
