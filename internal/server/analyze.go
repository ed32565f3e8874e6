package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/analysis"
	"github.com/ayusman/drishti/internal/overlay"
	"github.com/ayusman/drishti/internal/session"
)

const defaultSessionID = "default"

type analyzeRequest struct {
	SessionID string `json:"session_id"`
	Image     string `json:"image"`
}

type analyzeResponse struct {
	Success        bool                 `json:"success"`
	Skipped        bool                 `json:"skipped,omitempty"`
	Count          int                  `json:"count"`
	Faces          []session.FaceResult `json:"faces"`
	ProcessedImage string               `json:"processed_image,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// handleAnalyze handles POST /api/analyze: one frame in, one result out.
// The image arrives as a base64 data URL; the response carries the same
// frame back with the analysis overlay rendered on it.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SessionID == "" {
		req.SessionID = defaultSessionID
	}

	frame, err := decodeImage(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image data")
		return
	}
	defer frame.Close()

	result, err := s.config.Analyzer.ProcessFrame(req.SessionID, &frame)
	if err != nil {
		if errors.Is(err, analysis.ErrSessionBusy) {
			writeJSON(w, http.StatusOK, analyzeResponse{
				Success: true,
				Skipped: true,
				Faces:   []session.FaceResult{},
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	response := analyzeResponse{
		Success: true,
		Count:   result.Count,
		Faces:   result.Faces,
	}

	annotated := overlay.Draw(&frame, result)
	defer annotated.Close()
	if encoded, err := encodeImage(&annotated); err == nil {
		response.ProcessedImage = encoded
	}

	writeJSON(w, http.StatusOK, response)
}

// handleStatistics handles GET /api/statistics?session_id=...
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("session_id")
	if id == "" {
		id = defaultSessionID
	}

	stats := s.config.Analyzer.Registry().Stats(id, time.Now())
	writeJSON(w, http.StatusOK, stats)
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

// handleReset handles POST /api/reset: clears a session's tracking state
// and counters while keeping the session alive.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SessionID == "" {
		req.SessionID = defaultSessionID
	}

	s.config.Analyzer.Registry().Reset(req.SessionID, time.Now())
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleCrossRef handles GET /api/crossref?session_a=...&session_b=...
func (s *Server) handleCrossRef(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idA := r.URL.Query().Get("session_a")
	idB := r.URL.Query().Get("session_b")
	if idA == "" || idB == "" {
		writeError(w, http.StatusBadRequest, "session_a and session_b are required")
		return
	}

	registry := s.config.Analyzer.Registry()
	result := analysis.CrossReference(registry.Get(idA), registry.Get(idB))
	writeJSON(w, http.StatusOK, result)
}

// decodeImage converts a base64 data URL (or bare base64) into a Mat.
func decodeImage(data string) (gocv.Mat, error) {
	if idx := strings.Index(data, ","); idx >= 0 && strings.HasPrefix(data, "data:") {
		data = data[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return gocv.Mat{}, err
	}

	frame, err := gocv.IMDecode(raw, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, err
	}
	if frame.Empty() {
		frame.Close()
		return gocv.Mat{}, errors.New("empty image")
	}
	return frame, nil
}

// encodeImage converts a Mat into a JPEG data URL.
func encodeImage(frame *gocv.Mat) (string, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return "", err
	}
	defer buf.Close()

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.GetBytes()), nil
}
