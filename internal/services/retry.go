package services

import (
	"context"
	"time"

	"skillshare-backend/internal/apperr"

	"github.com/rs/zerolog/log"
)

const (
	maxConflictAttempts = 3
	conflictBackoff     = 20 * time.Millisecond
)

// retryOnConflict reruns op while it fails with ConflictRetryable, up to
// maxConflictAttempts times in total.
func retryOnConflict(ctx context.Context, name string, op func() error) error {
	var err error
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		err = op()
		if !apperr.Is(err, apperr.ConflictRetryable) {
			return err
		}
		log.Debug().Err(err).Str("op", name).Int("attempt", attempt).Msg("Retrying after write conflict")
		if attempt == maxConflictAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return apperr.Wrap(apperr.ConflictRetryable, ctx.Err(), "%s cancelled while retrying", name)
		case <-time.After(time.Duration(attempt) * conflictBackoff):
		}
	}
	return apperr.Wrap(apperr.ConflictRetryable, err, "%s failed after %d attempts", name, maxConflictAttempts)
}
