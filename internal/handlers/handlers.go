package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Brownie44l1/bcd-api/internal/metrics"
	"github.com/Brownie44l1/bcd-api/internal/model"
	"github.com/Brownie44l1/bcd-api/internal/preprocess"
)

// Classifier is the loaded model as seen by the HTTP layer.
type Classifier interface {
	Infer(ctx context.Context, t *preprocess.Tensor) ([]float32, error)
	InputSize() preprocess.Size
}

type Handler struct {
	classifier Classifier
	size       preprocess.Size
	maxUpload  int64
	logger     *slog.Logger
}

// NewHandler wires the request handlers. A nil classifier means the model
// failed to load: /health reports it and /predict fails.
func NewHandler(classifier Classifier, size preprocess.Size, maxUpload int64, logger *slog.Logger) *Handler {
	if classifier != nil {
		size = classifier.InputSize()
	}
	return &Handler{
		classifier: classifier,
		size:       size,
		maxUpload:  maxUpload,
		logger:     logger,
	}
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:      "Healthy",
		ModelLoaded: h.classifier != nil,
	})
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), h.logger)

	data, err := h.readUpload(w, r)
	if err != nil {
		if vErr, ok := isValidation(err); ok {
			logger.Warn("rejected upload", "reason", vErr.Message)
			respondError(w, http.StatusBadRequest, vErr.Message)
			return
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("rejected upload", "reason", msgTooLarge, "limit", tooLarge.Limit)
			respondError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		h.predictionFailed(w, logger, err)
		return
	}

	logger.Info("processing uploaded image", "bytes", len(data))

	result, err := h.predict(r.Context(), logger, data)
	if err != nil {
		h.predictionFailed(w, logger, err)
		return
	}

	metrics.Predictions.WithLabelValues(result.Class).Inc()
	logger.Info("prediction result", "class", result.Class, "confidence", result.Confidence)
	respondJSON(w, http.StatusOK, result)
}

// readUpload validates the multipart body and returns the raw file bytes.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errNoFile
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	// The declared type is trusted; a lie surfaces later as a decode error.
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return nil, errNotImage
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

func (h *Handler) predict(ctx context.Context, logger *slog.Logger, data []byte) (model.Prediction, error) {
	img, format, err := preprocess.Decode(data)
	if err != nil {
		return model.Prediction{}, err
	}

	tensor := preprocess.Preprocess(img, h.size)
	logger.Debug("processed image",
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
		"shape", tensor.Shape,
	)

	if h.classifier == nil {
		return model.Prediction{}, model.ErrModelNotLoaded
	}

	probs, err := h.classifier.Infer(ctx, tensor)
	if err != nil {
		return model.Prediction{}, err
	}

	return model.Classify(probs)
}

func (h *Handler) predictionFailed(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("error during prediction", "err", err)
	respondJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   msgPredictErr,
		Details: err.Error(),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("error encoding response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
