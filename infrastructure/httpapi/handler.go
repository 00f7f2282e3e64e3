package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"audio-extract-service/application/export"
	"audio-extract-service/domain/extraction"
)

// maxBodyBytes caps request bodies; both endpoints take small JSON documents
const maxBodyBytes = 1 << 20

// AudioExtractor is the core the audio endpoint calls into
type AudioExtractor interface {
	Extract(ctx context.Context, req *extraction.ExtractionRequest) (*extraction.Artifact, error)
}

// Exporter is the MusicXML export stub
type Exporter interface {
	Export(body []byte) (*export.Response, error)
}

// Handler serves the HTTP glue around the extraction core
type Handler struct {
	extractor AudioExtractor
	exporter  Exporter
	logger    *slog.Logger
	mux       *http.ServeMux
}

type audioRequest struct {
	VideoID string `json:"videoId"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewHandler wires the routes
func NewHandler(extractor AudioExtractor, exporter Exporter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		extractor: extractor,
		exporter:  exporter,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	h.mux.HandleFunc("/api/youtube-audio", h.handleAudio)
	h.mux.HandleFunc("/api/xml-export", h.handleExport)
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var body audioRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return
	}

	req, err := extraction.NewExtractionRequest(body.VideoID)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Video ID required",
			Kind:    string(extraction.KindInvalidRequest),
			Message: err.Error(),
		})
		return
	}

	art, err := h.extractor.Extract(r.Context(), req)
	outcome := extraction.OutcomeOf(art, err)
	if !outcome.Succeeded() {
		h.writeFailure(w, outcome.Failure)
		return
	}

	w.Header().Set("Content-Type", art.MediaType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Data); err != nil {
		h.logger.Warn("audio response write failed", slog.String("error", err.Error()))
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to process MusicXML export: " + err.Error()})
		return
	}

	resp, err := h.exporter.Export(body)
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to process MusicXML export: " + err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeFailure(w http.ResponseWriter, failure *extraction.Error) {
	kind := failure.Kind.Reported()

	status := http.StatusInternalServerError
	switch failure.Kind {
	case extraction.KindInvalidRequest:
		status = http.StatusBadRequest
	case extraction.KindBackendUnavailable:
		status = http.StatusServiceUnavailable
	case extraction.KindExtractionTimeout:
		status = http.StatusGatewayTimeout
	}

	message := failure.Detail
	if message == "" {
		message = failure.Message
	}
	h.writeJSON(w, status, errorResponse{
		Error:   errorTitle(kind),
		Kind:    string(kind),
		Message: extraction.Truncate(message, extraction.DefaultDiagnosticLimit),
	})
}

func errorTitle(kind extraction.Kind) string {
	switch kind {
	case extraction.KindBackendUnavailable:
		return "yt-dlp not found. Please install it: brew install yt-dlp"
	case extraction.KindExtractionFailed:
		return "Failed to extract audio"
	case extraction.KindNoOutputProduced:
		return "No audio produced"
	case extraction.KindReadFailed:
		return "Failed to read extracted audio"
	case extraction.KindInvalidRequest:
		return "Video ID required"
	default:
		return "Error"
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("json response encode failed", slog.String("error", err.Error()))
	}
}
