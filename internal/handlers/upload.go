package handlers

import (
	"net/http"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/carsawa/carsawa-api/internal/storage"
)

const (
	maxUploadFiles    = 10
	maxUploadFileSize = 5 << 20 // 5MB per file
)

var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadHandler proxies listing image uploads to the object store.
type UploadHandler struct {
	store storage.ImageStore
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(store storage.ImageStore) *UploadHandler {
	return &UploadHandler{store: store}
}

type uploadedFile struct {
	OriginalName string `json:"originalName"`
	Key          string `json:"key"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	ContentType  string `json:"contentType"`
}

// UploadImages stores the multipart "images" files and returns their public
// URLs and deletable keys.
func (h *UploadHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadFiles * maxUploadFileSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(files) > maxUploadFiles {
		respondError(w, http.StatusBadRequest, "Too many files")
		return
	}

	uploaded := make([]uploadedFile, 0, len(files))
	for _, header := range files {
		ext := strings.ToLower(path.Ext(header.Filename))
		if !allowedImageExts[ext] {
			respondError(w, http.StatusBadRequest, "Only image files are allowed")
			return
		}
		if header.Size > maxUploadFileSize {
			respondError(w, http.StatusBadRequest, "File too large")
			return
		}

		file, err := header.Open()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Server error")
			return
		}

		contentType := header.Header.Get("Content-Type")
		stored, err := h.store.Upload(r.Context(), header.Filename, contentType, file, header.Size)
		file.Close()
		if err != nil {
			log.WithError(err).WithField("file", header.Filename).Error("Failed to upload image")
			respondError(w, http.StatusInternalServerError, "Server error")
			return
		}

		uploaded = append(uploaded, uploadedFile{
			OriginalName: header.Filename,
			Key:          stored.Key,
			URL:          stored.URL,
			Size:         header.Size,
			ContentType:  contentType,
		})
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Files uploaded successfully",
		"files":   uploaded,
	})
}

// DeleteImage removes a previously uploaded image by key. Deleting an
// already-removed key succeeds.
func (h *UploadHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		respondError(w, http.StatusBadRequest, "Image key is required")
		return
	}

	if err := h.store.Delete(r.Context(), key); err != nil {
		log.WithError(err).WithField("key", key).Error("Failed to delete image")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Image deleted successfully"})
}
