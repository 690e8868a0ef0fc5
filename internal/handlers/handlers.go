// Package handlers serves the upload page and the prediction API.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Brownie44l1/analyart/internal/analyzer"
	"github.com/Brownie44l1/analyart/internal/ranking"
	"github.com/Brownie44l1/analyart/internal/render"
	"go.uber.org/zap"
)

const (
	formField       = "image"
	healthyStatus   = "healthy"
	defaultUploadMB = 10
)

// Handler serves HTTP requests against a possibly still loading model.
type Handler struct {
	loader      *analyzer.Loader
	maxUploadMB int64
	logger      *zap.Logger
}

// NewHandler returns a Handler. maxUploadMB bounds multipart uploads.
func NewHandler(loader *analyzer.Loader, maxUploadMB int64, logger *zap.Logger) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = defaultUploadMB
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		loader:      loader,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// Register adds every route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.Page)
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/predict", h.Predict)
	mux.HandleFunc("/predict/image", h.PredictFromImage)
}

// Health reports model readiness; anything but ready is 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: healthyStatus}
	code := http.StatusOK

	switch h.loader.Status() {
	case analyzer.StatusLoading:
		resp.Status, code = analyzer.StatusLoading.String(), http.StatusServiceUnavailable
	case analyzer.StatusFailed:
		_, err := h.loader.Analyzer()
		resp.Status, resp.Error, code = analyzer.StatusFailed.String(), err.Error(), http.StatusServiceUnavailable
	}

	writeJSON(w, code, resp)
}

// Predict scores a raw tensor posted as JSON.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	a, ok := h.analyzer(w)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if tooLarge(err) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req PredictionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if expected := a.InputSize(); len(req.Image) != expected {
		http.Error(w, fmt.Sprintf("Expected %d values, got %d", expected, len(req.Image)),
			http.StatusBadRequest)
		return
	}

	result, err := a.IdentifyTensor(r.Context(), req.Image)
	if err != nil {
		h.logger.Error("prediction failed", zap.Error(err))
		http.Error(w, "Prediction failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, newPredictionResponse(result))
}

// PredictFromImage scores an uploaded image and answers with JSON.
func (h *Handler) PredictFromImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, _, ok := h.identifyUpload(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, newPredictionResponse(result))
}

// Page serves the upload page on GET and the page with results on POST.
// Reset is a plain link back to GET /.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page := render.Page{Status: h.loader.Status().String(), MaxUploadMB: h.maxUploadMB}
	if h.loader.Status() == analyzer.StatusFailed {
		_, err := h.loader.Analyzer()
		page.LoadError = err.Error()
	}

	switch r.Method {
	case http.MethodGet:
		h.writePage(w, page)
	case http.MethodPost:
		result, filename, ok := h.identifyUpload(w, r)
		if !ok {
			return
		}
		page.Filename = filename
		page.Result = &result
		h.writePage(w, page)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) analyzer(w http.ResponseWriter) (*analyzer.Analyzer, bool) {
	a, err := h.loader.Analyzer()
	if err == nil {
		return a, true
	}
	if errors.Is(err, analyzer.ErrNotReady) {
		http.Error(w, "Model is still loading", http.StatusServiceUnavailable)
	} else {
		http.Error(w, "Model failed to load", http.StatusServiceUnavailable)
	}
	return nil, false
}

// identifyUpload reads the multipart image field and classifies it. On
// failure it has already written the error response.
func (h *Handler) identifyUpload(w http.ResponseWriter, r *http.Request) (ranking.Result, string, bool) {
	a, ok := h.analyzer(w)
	if !ok {
		return ranking.Result{}, "", false
	}

	limit := h.maxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		if tooLarge(err) {
			http.Error(w, "Image too large", http.StatusRequestEntityTooLarge)
			return ranking.Result{}, "", false
		}
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return ranking.Result{}, "", false
	}

	file, header, err := r.FormFile(formField)
	if err != nil {
		http.Error(w, "No image file provided. Use 'image' as the form field name", http.StatusBadRequest)
		return ranking.Result{}, "", false
	}
	defer file.Close()

	h.logger.Info("received file",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read image", http.StatusBadRequest)
		return ranking.Result{}, "", false
	}

	result, err := a.IdentifyBytes(r.Context(), data)
	if errors.Is(err, analyzer.ErrDecode) {
		http.Error(w, "Invalid image format. Supported: JPEG, PNG, GIF", http.StatusBadRequest)
		return ranking.Result{}, "", false
	}
	if err != nil {
		h.logger.Error("prediction failed", zap.String("filename", header.Filename), zap.Error(err))
		http.Error(w, "Prediction failed", http.StatusInternalServerError)
		return ranking.Result{}, "", false
	}

	h.logger.Info("image identified",
		zap.String("filename", header.Filename),
		zap.String("status", result.Status),
		zap.Int("confidence", result.Top.Percent))
	return result, header.Filename, true
}

func (h *Handler) writePage(w http.ResponseWriter, page render.Page) {
	var buf bytes.Buffer
	if err := render.HTML(&buf, page); err != nil {
		h.logger.Error("page render failed", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
