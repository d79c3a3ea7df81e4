package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/serenolabs/sereno/internal/server/auth"
	srverrors "github.com/serenolabs/sereno/internal/server/errors"
	"github.com/serenolabs/sereno/internal/server/logger"
	"github.com/serenolabs/sereno/internal/server/repository"
)

// BackupRepository defines the backup data access the handler needs.
type BackupRepository interface {
	CreateBackup(ctx context.Context, ownerID int64, filename string, content []byte) (*repository.Backup, error)
	GetLatestBackup(ctx context.Context, ownerID int64) (*repository.Backup, error)
}

// BackupHandler serves upload and retrieval of client-encrypted backup blobs.
type BackupHandler struct {
	backups  BackupRepository
	maxBytes int64
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(backups BackupRepository, maxBytes int64) *BackupHandler {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	return &BackupHandler{
		backups:  backups,
		maxBytes: maxBytes,
	}
}

type createBackupResponse struct {
	Status    string    `json:"status"`
	BackupID  int64     `json:"backup_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Upload stores a backup blob for the caller. Only opaque pre-encrypted
// payloads are accepted: declared raw audio/video content types are
// rejected. The upload is a multipart form with a single "file" part.
// POST /backup (authenticated)
func (h *BackupHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, srverrors.NewInvalidInput("file is required"))
		return
	}
	defer file.Close()

	if rejected, mediaType := isRawMedia(header.Header.Get("Content-Type")); rejected {
		respondError(w, r, srverrors.NewInvalidInput(
			fmt.Sprintf("content type %s not accepted: only pre-encrypted backups are allowed", mediaType)))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, srverrors.NewInvalidInput("failed to read file"))
		return
	}

	backup, err := h.backups.CreateBackup(r.Context(), identity.UserID, header.Filename, content)
	if err != nil {
		respondError(w, r, srverrors.NewInternal("failed to store backup", err))
		return
	}

	respondJSON(w, http.StatusCreated, createBackupResponse{
		Status:    "stored",
		BackupID:  backup.ID,
		CreatedAt: backup.CreatedAt,
	})
}

// DownloadLatest streams the caller's most recent backup blob byte-identical
// to what was uploaded.
// GET /backup/latest (authenticated)
func (h *BackupHandler) DownloadLatest(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	backup, err := h.backups.GetLatestBackup(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, r, srverrors.NewNotFound("no backup found"))
			return
		}
		respondError(w, r, srverrors.NewInternal("failed to retrieve backup", err))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(backup.Content); err != nil {
		// Headers are already out; nothing left to do but log.
		logger.WithContext(r.Context()).Error("failed to write backup response", zap.Error(err))
	}
}

// isRawMedia reports whether a declared content type names raw audio or
// video, returning the parsed media type for the error message.
func isRawMedia(contentType string) (bool, string) {
	if contentType == "" {
		return false, ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	return strings.HasPrefix(mediaType, "audio/") || strings.HasPrefix(mediaType, "video/"), mediaType
}
