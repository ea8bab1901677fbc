package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"nobounce_admin/internal/adapters/observability"
	"nobounce_admin/internal/domain"
)

type ImageService struct {
	storage domain.ObjectStorage
	bucket  string
}

func NewImageService(s domain.ObjectStorage, bucket string) *ImageService {
	if bucket == "" {
		bucket = domain.DefaultBucket
	}
	return &ImageService{storage: s, bucket: bucket}
}

// ImageKey derives the storage key of the i-th (1-based) file of a court's batch.
// The extension is whatever follows the last '.', so "photo" maps to "{id}/{i}.photo".
func ImageKey(courtID int64, i int, filename string) string {
	ext := filename
	if dot := strings.LastIndexByte(filename, '.'); dot >= 0 {
		ext = filename[dot+1:]
	}
	return fmt.Sprintf("%d/%d.%s", courtID, i, ext)
}

// UploadBatch deposits every file under the court's key namespace, one at a time.
// A failing file is recorded and skipped; the batch is never aborted and nothing is retried.
// The public URL is only resolved for files whose upload succeeded.
func (s *ImageService) UploadBatch(ctx context.Context, courtID int64, files []domain.Upload, bucket string) domain.BatchResult {
	if bucket == "" {
		bucket = s.bucket
	}
	out := domain.BatchResult{Bucket: bucket, Files: make([]domain.FileResult, 0, len(files))}

	for idx, f := range files {
		res := domain.FileResult{
			Index:    idx + 1,
			Filename: f.Filename,
			Key:      ImageKey(courtID, idx+1, f.Filename),
		}

		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}

		if err := s.storage.Upload(ctx, bucket, res.Key, f.Data, ct, true); err != nil {
			res.Err = err
			log.Warn().
				Int64("court_id", courtID).
				Str("file", f.Filename).
				Str("key", res.Key).
				Err(err).
				Msg("image upload failed")
			observability.ObserveUpload("failed")
		} else {
			res.URL = s.storage.PublicURL(bucket, res.Key)
			observability.ObserveUpload("ok")
		}
		out.Files = append(out.Files, res)
	}

	return out
}
