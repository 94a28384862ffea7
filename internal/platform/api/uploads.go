package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/storage"
)

const defaultUploadFolder = "uploads"

// UploadHandler stores multipart files in object storage
type UploadHandler struct {
	files    storage.FileStorage
	maxBytes int64
}

// NewUploadHandler creates a new upload handler. maxBytes bounds the
// in-memory part of the multipart form.
func NewUploadHandler(files storage.FileStorage, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &UploadHandler{files: files, maxBytes: maxBytes}
}

// Upload handles POST /api/uploads with a "file" part and optional
// "folder" and "kind" (image|document) fields.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		WriteInvalidBody(w, err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		common.WriteUseCaseError(w, common.ValidationError(common.ErrCodeRequired, "A file is required", map[string]any{"field": "file"}))
		return
	}
	defer file.Close()

	kind := storage.ParseKind(r.FormValue("kind"))
	contentType := header.Header.Get("Content-Type")
	if ucErr := checkContentType(kind, contentType); ucErr != nil {
		common.WriteUseCaseError(w, ucErr)
		return
	}

	folder, ok := uploadFolder(r.FormValue("folder"))
	if !ok {
		common.WriteUseCaseError(w, common.ValidationError(common.ErrCodeInvalidValue, "Folder name is not valid", map[string]any{"field": "folder"}))
		return
	}

	stored, err := h.files.Upload(r.Context(), file, header.Size, folder, kind, contentType)
	if err != nil {
		slog.ErrorContext(r.Context(), "File upload failed", "folder", folder, "kind", kind, "error", err)
		if errors.Is(err, storage.ErrUnavailable) {
			common.WriteUseCaseError(w, common.UpstreamError(common.ErrCodeUpstream, "File storage is unavailable"))
			return
		}
		common.WriteUseCaseError(w, common.UpstreamError(common.ErrCodeStoreFailure, "Failed to upload file"))
		return
	}
	common.WriteSuccess(w, http.StatusCreated, stored)
}

func checkContentType(kind storage.Kind, contentType string) *common.UseCaseError {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return common.ValidationError(common.ErrCodeInvalidValue, "File content type is missing or invalid", nil)
	}
	switch kind {
	case storage.KindImage:
		if strings.HasPrefix(mediaType, "image/") {
			return nil
		}
	case storage.KindDocument:
		switch mediaType {
		case "application/pdf", "application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
			return nil
		}
	}
	return common.ValidationError(common.ErrCodeInvalidValue, "File type is not allowed",
		map[string]any{"kind": string(kind), "contentType": mediaType})
}

// uploadFolder cleans a caller-supplied folder to a relative path with no
// parent references.
func uploadFolder(folder string) (string, bool) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return defaultUploadFolder, true
	}
	cleaned := path.Clean(folder)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || strings.ContainsAny(cleaned, "\\") {
		return "", false
	}
	return cleaned, true
}
