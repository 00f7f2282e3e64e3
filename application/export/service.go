package export

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ClientSideMessage tells callers that MusicXML conversion happens in the browser
const ClientSideMessage = "Use client-side export for MusicXML files"

// Response echoes the submitted score data back to the client
type Response struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Service is the MusicXML export stub. It shares no state with audio extraction.
type Service struct{}

// NewService creates a new export Service
func NewService() *Service {
	return &Service{}
}

// Export validates body as JSON and returns it unchanged. An empty body is treated as {}.
func (s *Service) Export(body []byte) (*Response, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	if !json.Valid(body) {
		return nil, errors.New("invalid JSON body")
	}

	return &Response{
		Message: ClientSideMessage,
		Data:    json.RawMessage(body),
	}, nil
}
