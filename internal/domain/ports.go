package domain

import "context"

type CourtRepository interface {
	// Write paths
	InsertCourt(ctx context.Context, f CourtFields, admin string) (Court, error)
	UpdateCourt(ctx context.Context, id int64, u CourtUpdate) (int64, error)
	UpsertRating(ctx context.Context, r Rating) (Rating, error)

	// Read paths
	GetCourt(ctx context.Context, id int64) (Court, error)
	ListCourts(ctx context.Context) ([]CourtSummary, error)
	GetRating(ctx context.Context, courtID int64, source Source) (Rating, error)
}

type ObjectStorage interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error
	PublicURL(bucket, key string) string
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
