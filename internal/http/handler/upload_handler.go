package handler

import (
	"io"
	"net/http"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/storage"
	"go.uber.org/zap"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadHandler accepts image uploads and returns their public URL
type UploadHandler struct {
	store         storage.Storage
	maxUploadSize int64
	logger        *zap.Logger
}

func NewUploadHandler(store storage.Storage, maxUploadSizeMB int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		store:         store,
		maxUploadSize: maxUploadSizeMB * 1024 * 1024,
		logger:        logger,
	}
}

// Upload stores a single image from a multipart form. Only jpeg, png and
// webp are accepted; the content type is sniffed from the bytes, not
// trusted from the request.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "File exceeds the upload size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		respondWithError(w, http.StatusRequestEntityTooLarge, "File exceeds the upload size limit")
		return
	}

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		respondWithError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedImageTypes[contentType] {
		respondWithError(w, http.StatusUnsupportedMediaType, "Only jpeg, png and webp images are accepted")
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not read uploaded file")
		return
	}

	storagePath, size, err := h.store.Upload(r.Context(), header.Filename, contentType, file)
	if err != nil {
		h.logger.Error("File upload failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	h.logger.Info("File uploaded",
		zap.String("path", storagePath),
		zap.String("content_type", contentType),
		zap.Int64("size", size),
	)

	respondJSON(w, http.StatusCreated, domain.UploadResponse{
		URL: h.store.PublicURL(storagePath),
	})
}
