package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.StorageError:
		return http.StatusBadGateway
	case apperr.ConflictRetryable:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs a failed operation and answers with the status
// matching its kind. Internal details stay in the log.
func respondServiceError(w http.ResponseWriter, err error, msg string, userID string) {
	status := statusFor(err)

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("user_id", userID).Int("status", status).Msg(msg)

	message := apperr.Message(err)
	if status == http.StatusInternalServerError {
		message = msg
	}
	respondError(w, message, status)
}

// decodeJSON reads a JSON body into v. An empty body is allowed when
// optional is set.
func decodeJSON(r *http.Request, v interface{}, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// readMediaFiles loads every file sent under field in a parsed multipart form
func readMediaFiles(form *multipart.Form, field string) ([]models.MediaFile, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[field]
	files := make([]models.MediaFile, 0, len(headers))
	for _, fh := range headers {
		file, err := readMediaFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readMediaFile(fh *multipart.FileHeader) (models.MediaFile, error) {
	f, err := fh.Open()
	if err != nil {
		return models.MediaFile{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.MediaFile{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return models.MediaFile{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// formValue returns a multipart field and whether it was sent at all
func formValue(form *multipart.Form, field string) (string, bool) {
	if form == nil {
		return "", false
	}
	values, ok := form.Value[field]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
