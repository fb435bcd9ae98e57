package repository

import (
	"context"
	"errors"

	"roast-server/internal/models"
)

// ErrRoastNotFound is returned when a roast record does not exist or has expired.
var ErrRoastNotFound = errors.New("roast not found")

// RoastRepository defines the persistence contract for roast records.
// The record is exclusively owned by the generation workflow while
// status=generating; once ready, only the paid flag may change.
type RoastRepository interface {
	// Save stores the record under roast:<id> with the configured TTL.
	Save(ctx context.Context, id string, roast *models.Roast) error
	// Get returns the record or ErrRoastNotFound.
	Get(ctx context.Context, id string) (*models.Roast, error)
	// MarkPaid atomically sets paid=true on an existing record, preserving
	// the remaining TTL. A missing record is not an error: the record may
	// have expired between checkout and the webhook. Idempotent.
	MarkPaid(ctx context.Context, id string) error
	// SetReady atomically overwrites the record with the completed content,
	// preserving the stored paid flag and createdAt. An unlock committed at
	// any point before this call survives it. ErrRoastNotFound on expiry.
	SetReady(ctx context.Context, id string, ready *models.Roast) error
	// SetError atomically marks generation as failed. A record that already
	// reached ready is left untouched. ErrRoastNotFound on expiry.
	SetError(ctx context.Context, id string, message string) error

	// SaveProgress persists the workflow step cursor under roastjob:<id>.
	SaveProgress(ctx context.Context, id string, progress *models.JobProgress) error
	// GetProgress returns the saved cursor, or an empty progress if none.
	GetProgress(ctx context.Context, id string) (*models.JobProgress, error)
	// ClearProgress removes the cursor once the workflow has completed.
	ClearProgress(ctx context.Context, id string) error
}
