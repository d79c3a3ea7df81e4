package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenolabs/sereno/internal/server/auth"
)

func multipartUpload(t *testing.T, filename, contentType string, content []byte, userID int64) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/backup", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	ctx := auth.ContextWithIdentity(req.Context(), auth.Identity{Authenticated: true, UserID: userID})
	return req.WithContext(ctx)
}

func TestBackupHandler_UploadAndDownload(t *testing.T) {
	handler := NewBackupHandler(newFakeBackupRepo(), 32<<20)

	// Encrypted blobs are opaque; any non-media content type is accepted.
	content := []byte{0x00, 0x01, 0xff, 0xfe, 0x42}

	rec := httptest.NewRecorder()
	handler.Upload(rec, multipartUpload(t, "sereno-backup.bin", "application/octet-stream", content, 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createBackupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "stored", resp.Status)
	assert.NotZero(t, resp.BackupID)

	rec = httptest.NewRecorder()
	handler.DownloadLatest(rec, authedRequest(http.MethodGet, "/backup/latest", "", 1))
	require.Equal(t, http.StatusOK, rec.Code)

	// The download must be byte-identical to the upload.
	assert.Equal(t, content, rec.Body.Bytes())
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="sereno-backup.bin"`)
}

func TestBackupHandler_Upload_RejectsRawMedia(t *testing.T) {
	handler := NewBackupHandler(newFakeBackupRepo(), 32<<20)

	tests := []struct {
		name        string
		contentType string
	}{
		{name: "video", contentType: "video/mp4"},
		{name: "audio", contentType: "audio/mpeg"},
		{name: "audio with params", contentType: "audio/ogg; codecs=opus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Upload(rec, multipartUpload(t, "recording", tt.contentType, []byte("raw media"), 1))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestBackupHandler_Upload_MissingFilePart(t *testing.T) {
	handler := NewBackupHandler(newFakeBackupRepo(), 32<<20)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("note", "no file here"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/backup", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	ctx := auth.ContextWithIdentity(req.Context(), auth.Identity{Authenticated: true, UserID: 1})

	rec := httptest.NewRecorder()
	handler.Upload(rec, req.WithContext(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackupHandler_DownloadLatest_NoneStored(t *testing.T) {
	handler := NewBackupHandler(newFakeBackupRepo(), 32<<20)

	rec := httptest.NewRecorder()
	handler.DownloadLatest(rec, authedRequest(http.MethodGet, "/backup/latest", "", 1))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBackupHandler_DownloadLatest_PicksNewest(t *testing.T) {
	handler := NewBackupHandler(newFakeBackupRepo(), 32<<20)

	for i, content := range [][]byte{[]byte("old"), []byte("new")} {
		rec := httptest.NewRecorder()
		handler.Upload(rec, multipartUpload(t, fmt.Sprintf("backup-%d.bin", i), "application/octet-stream", content, 1))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.DownloadLatest(rec, authedRequest(http.MethodGet, "/backup/latest", "", 1))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", rec.Body.String())
}

func TestBackupHandler_DownloadLatest_IsolatedPerUser(t *testing.T) {
	handler := NewBackupHandler(newFakeBackupRepo(), 32<<20)

	rec := httptest.NewRecorder()
	handler.Upload(rec, multipartUpload(t, "mine.bin", "application/octet-stream", []byte("user 1 data"), 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	handler.DownloadLatest(rec, authedRequest(http.MethodGet, "/backup/latest", "", 2))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
