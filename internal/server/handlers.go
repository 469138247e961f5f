package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/born-ml/digits/internal/preprocess"
	"github.com/born-ml/digits/internal/serialization"
)

// PredictRequest is the body of POST /predict.
//
// Image is either a JSON array of pixel values on the 0-255 scale or a
// string holding an image data URL.
type PredictRequest struct {
	Image json.RawMessage `json:"image"`
}

// PredictResponse is the body of a successful prediction.
type PredictResponse struct {
	Prediction int       `json:"prediction"`
	Output     []float64 `json:"output"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Model      bool   `json:"model"`
	InputSize  int    `json:"inputSize,omitempty"`
	HiddenSize int    `json:"hiddenSize,omitempty"`
	OutputSize int    `json:"outputSize,omitempty"`
}

const noModelMessage = "No trained model found."

var errInvalidRequest = errors.New("invalid request")

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}

	net, err := s.models.Get()
	if err != nil {
		if errors.Is(err, serialization.ErrNoModel) {
			s.writeError(w, r, http.StatusServiceUnavailable, errors.New(noModelMessage))
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("load model: %w", err))
		return
	}

	input, err := decodeImage(req.Image, net.InputSize())
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	pred, output, err := net.Predict(input)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, PredictResponse{Prediction: pred, Output: output})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	net, err := s.models.Get()
	switch {
	case errors.Is(err, serialization.ErrNoModel):
		s.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
	case err != nil:
		s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("load model: %w", err))
	default:
		s.writeJSON(w, r, http.StatusOK, HealthResponse{
			Status:     "ok",
			Model:      true,
			InputSize:  net.InputSize(),
			HiddenSize: net.HiddenSize(),
			OutputSize: net.OutputSize(),
		})
	}
}

// decodeImage normalizes the raw "image" field into a network input vector.
func decodeImage(raw json.RawMessage, size int) ([]float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing image", errInvalidRequest)
	}

	switch raw[0] {
	case '"':
		var url string
		if err := json.Unmarshal(raw, &url); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		return preprocess.DataURL(url, size)
	case '[':
		var pixels []float64
		if err := json.Unmarshal(raw, &pixels); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		return preprocess.Pixels(pixels, size)
	default:
		return nil, fmt.Errorf("%w: image must be an array or a data URL", preprocess.ErrUnsupportedImage)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Printf("request_id=%s path=%s status=%d error=%q", requestID(r.Context()), r.URL.Path, status, err)
	s.writeJSON(w, r, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("request_id=%s path=%s status=%d write_error=%q", requestID(r.Context()), r.URL.Path, status, err)
	}
}
