package services

import (
	"context"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MediaService uploads files through the storage backend and records them
// against a post
type MediaService struct {
	mediaRepo MediaStore
	storage   Storage
}

// NewMediaService creates a new media service
func NewMediaService(mediaRepo MediaStore, storage Storage) *MediaService {
	return &MediaService{
		mediaRepo: mediaRepo,
		storage:   storage,
	}
}

// Attach stores and records each file independently. A failing file is
// logged and reported in its result; the remaining files are still attached.
// Empty files are skipped without a result.
func (s *MediaService) Attach(ctx context.Context, postID string, files []models.MediaFile) ([]*models.Media, []models.MediaResult) {
	var attached []*models.Media
	results := make([]models.MediaResult, 0, len(files))

	for _, file := range files {
		if file.Empty() {
			continue
		}
		result := models.MediaResult{Filename: file.Filename}

		media, err := s.upload(ctx, postID, file, len(attached))
		if err == nil {
			err = s.mediaRepo.Create(ctx, media)
		}
		if err != nil {
			log.Warn().
				Err(err).
				Str("post_id", postID).
				Str("filename", file.Filename).
				Msg("Skipping media file")
			result.Error = apperr.Message(err)
			results = append(results, result)
			continue
		}

		attached = append(attached, media)
		result.URL = media.URL
		result.Kind = media.Kind
		results = append(results, result)
	}
	return attached, results
}

// UploadAll stores every non-empty file and returns unsaved media rows in
// order. The first storage failure aborts with a StorageError.
func (s *MediaService) UploadAll(ctx context.Context, postID string, files []models.MediaFile) ([]*models.Media, error) {
	var media []*models.Media
	for _, file := range files {
		if file.Empty() {
			continue
		}
		m, err := s.upload(ctx, postID, file, len(media))
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, nil
}

func (s *MediaService) upload(ctx context.Context, postID string, file models.MediaFile, position int) (*models.Media, error) {
	url, err := s.storage.Store(ctx, file.Data, file.ContentType, file.Filename)
	if err != nil {
		if apperr.Is(err, apperr.StorageError) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.StorageError, err, "failed to store %s", file.Filename)
	}
	return &models.Media{
		ID:        uuid.New().String(),
		PostID:    postID,
		URL:       url,
		Kind:      models.MediaKindFor(file.ContentType),
		Position:  position,
		CreatedAt: time.Now(),
	}, nil
}

// logOrphanedMedia records objects that were stored but never linked to a
// post, so they can be swept from the bucket.
func logOrphanedMedia(postID string, media []*models.Media, cause error) {
	urls := make([]string, 0, len(media))
	for _, m := range media {
		urls = append(urls, m.URL)
	}
	log.Warn().
		Err(cause).
		Str("post_id", postID).
		Strs("orphaned_urls", urls).
		Msg("Stored media left unlinked")
}

// hasFiles reports whether any file carries data
func hasFiles(files []models.MediaFile) bool {
	for _, f := range files {
		if !f.Empty() {
			return true
		}
	}
	return false
}
