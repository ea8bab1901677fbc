package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"nobounce_admin/internal/domain"
)

type CourtService struct {
	repo   domain.CourtRepository
	images *ImageService
	cache  domain.Cache
}

func NewCourtService(r domain.CourtRepository, images *ImageService, cache domain.Cache) *CourtService {
	return &CourtService{repo: r, images: images, cache: cache}
}

// CourtResult is the court as written plus the outcome of its image batch, if any.
type CourtResult struct {
	Court domain.Court
	Batch *domain.BatchResult
}

// CreateCourt inserts the court with an empty image list, then uploads the batch under the
// new ID and attaches the resulting URLs. An insert failure aborts everything; a failure
// after the insert leaves the court in place. Cancelling ctx does not stop the chain.
func (s *CourtService) CreateCourt(ctx context.Context, admin string, f domain.CourtFields, files []domain.Upload) (CourtResult, error) {
	// a submission runs to the end once started
	ctx = context.WithoutCancel(ctx)

	c, err := s.repo.InsertCourt(ctx, f, admin)
	if err != nil {
		return CourtResult{}, fmt.Errorf("insert court: %w", err)
	}
	if c.ImageURLs == nil {
		c.ImageURLs = []string{}
	}
	s.invalidateList(ctx)
	log.Info().Int64("court_id", c.ID).Str("admin", admin).Msg("court created")

	res := CourtResult{Court: c}
	if len(files) == 0 {
		return res, nil
	}

	batch := s.images.UploadBatch(ctx, c.ID, files, "")
	res.Batch = &batch

	urls := batch.URLs()
	if len(urls) == 0 {
		log.Warn().Int64("court_id", c.ID).Int("files", len(files)).Msg("no images stored for new court")
		return res, nil
	}

	s.invalidateCourt(ctx, c.ID)
	if _, err := s.repo.UpdateCourt(ctx, c.ID, domain.CourtUpdate{ImageURLs: urls, AdminCreatedBy: admin}); err != nil {
		return res, fmt.Errorf("attach images to court %d: %w", c.ID, err)
	}
	s.invalidateCourt(ctx, c.ID)

	res.Court.ImageURLs = urls
	res.Court.Version++
	return res, nil
}

// UpdateCourt uploads the new batch first (if any), then writes the fields in one update.
// The image list is only replaced when at least one file was stored.
// expectedVersion, when set, turns the write into a check-and-set.
func (s *CourtService) UpdateCourt(ctx context.Context, admin string, id int64, f domain.CourtFields, files []domain.Upload, expectedVersion *int64) (CourtResult, error) {
	ctx = context.WithoutCancel(ctx)

	cur, err := s.repo.GetCourt(ctx, id)
	if err != nil {
		return CourtResult{}, err
	}
	if expectedVersion != nil && *expectedVersion != cur.Version {
		return CourtResult{}, domain.ErrVersionConflict
	}

	upd := domain.CourtUpdate{Fields: &f, AdminCreatedBy: admin, ExpectedVersion: expectedVersion}

	var res CourtResult
	if len(files) > 0 {
		batch := s.images.UploadBatch(ctx, id, files, "")
		res.Batch = &batch
		if urls := batch.URLs(); len(urls) > 0 {
			upd.ImageURLs = urls
		}
	}

	// cleared on both sides of the write so a read racing it cannot leave the old row cached
	s.invalidateCourt(ctx, id)
	s.invalidateList(ctx)
	n, err := s.repo.UpdateCourt(ctx, id, upd)
	if err != nil {
		return res, fmt.Errorf("update court %d: %w", id, err)
	}
	if n == 0 {
		if expectedVersion != nil {
			return res, domain.ErrVersionConflict
		}
		return res, domain.ErrNotFound
	}
	s.invalidateCourt(ctx, id)
	s.invalidateList(ctx)
	log.Info().Int64("court_id", id).Str("admin", admin).Bool("images_replaced", upd.ImageURLs != nil).Msg("court updated")

	c, err := s.repo.GetCourt(ctx, id)
	if err != nil {
		// the write went through; answer with what we know
		c = applyUpdate(cur, upd)
	}
	res.Court = c
	return res, nil
}

// SaveRating creates or replaces the rating for (court, source).
func (s *CourtService) SaveRating(ctx context.Context, admin string, rf domain.RatingFields) (domain.Rating, error) {
	if _, err := s.repo.GetCourt(ctx, rf.CourtID); err != nil {
		return domain.Rating{}, err
	}
	r := domain.Rating{
		CourtID:        rf.CourtID,
		Source:         rf.Source,
		Scores:         NormalizeScores(rf.Scores),
		AdminCreatedBy: ptrStr(admin),
	}
	s.invalidateRating(ctx, rf.CourtID, rf.Source)
	out, err := s.repo.UpsertRating(ctx, r)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("upsert rating: %w", err)
	}
	s.invalidateRating(ctx, rf.CourtID, rf.Source)
	log.Info().Int64("court_id", rf.CourtID).Str("source", string(rf.Source)).Str("admin", admin).Msg("rating saved")
	return out, nil
}

func applyUpdate(c domain.Court, u domain.CourtUpdate) domain.Court {
	if u.Fields != nil {
		f := u.Fields
		c.Name, c.Address, c.City, c.District = f.Name, f.Address, f.City, f.District
		c.Latitude, c.Longitude = f.Latitude, f.Longitude
		c.InstagramURL, c.TikTokURL = f.InstagramURL, f.TikTokURL
	}
	if u.ImageURLs != nil {
		c.ImageURLs = u.ImageURLs
	}
	c.AdminCreatedBy = ptrStr(u.AdminCreatedBy)
	c.Version++
	return c
}

// IsValidation reports whether err came from input validation.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// cache invalidation

func (s *CourtService) invalidateList(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, courtListKey)
	}
}

func (s *CourtService) invalidateCourt(ctx context.Context, id int64) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, courtKey(id))
	}
}

func (s *CourtService) invalidateRating(ctx context.Context, id int64, src domain.Source) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, ratingKey(id, src))
	}
}
