package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/connectors"
)

const maxScreenshotBytes = 8 << 20

type attachmentPutter interface {
	Put(ctx context.Context, key string, blob []byte, contentType string) (string, error)
}

// UploadScreenshotHandler stores one screenshot blob in the external
// attachment store and returns the opaque path to reference on a trade.
func UploadScreenshotHandler(store attachmentPutter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Please sign in", http.StatusUnauthorized)
			return
		}

		if err := r.ParseMultipartForm(maxScreenshotBytes); err != nil {
			http.Error(w, "Invalid multipart payload", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "Missing file field", http.StatusBadRequest)
			return
		}
		defer file.Close()

		blob, err := io.ReadAll(io.LimitReader(file, maxScreenshotBytes))
		if err != nil {
			logger.WithError(err).Error("failed to read uploaded screenshot")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		key := fmt.Sprintf("%s/%s%s", user.ID, uuid.NewString(), filepath.Ext(header.Filename))

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		path, err := store.Put(r.Context(), key, blob, contentType)
		if err != nil {
			logger.WithError(err).Error("screenshot upload failed")
			http.Error(w, "Upload failed", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"path": path})
	}
}

// DefaultUploadScreenshotHandler wires the handler to the production
// attachment store client.
func DefaultUploadScreenshotHandler() http.HandlerFunc {
	config := connectors.GetConfig()
	return UploadScreenshotHandler(connectors.NewAttachmentClient(
		config.StorageBaseURL,
		config.StorageServiceKey,
		config.StorageBucket,
	))
}
