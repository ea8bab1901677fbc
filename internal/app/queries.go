package app

import (
	"context"
	"fmt"
	"time"

	"nobounce_admin/internal/domain"
)

const courtListKey = "courts:list"

func courtKey(id int64) string { return fmt.Sprintf("court:%d", id) }

func ratingKey(courtID int64, src domain.Source) string {
	return fmt.Sprintf("rating:%d:%s", courtID, src)
}

type QueryService struct {
	repo     domain.CourtRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.CourtRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// ListCourts returns id, name, city and district of every court ordered by name.
func (s *QueryService) ListCourts(ctx context.Context) ([]domain.CourtSummary, error) {
	var out []domain.CourtSummary
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, courtListKey, &out); ok {
			return out, nil
		}
	}
	cs, err := s.repo.ListCourts(ctx)
	if err != nil {
		return nil, err
	}
	if cs == nil {
		cs = []domain.CourtSummary{}
	}
	// copy to avoid aliasing the repo's backing array
	out = make([]domain.CourtSummary, len(cs))
	copy(out, cs)
	if s.cache != nil {
		_ = s.cache.Set(ctx, courtListKey, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func (s *QueryService) GetCourt(ctx context.Context, id int64) (domain.Court, error) {
	key := courtKey(id)
	var c domain.Court
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &c); ok {
			return c, nil
		}
	}
	c, err := s.repo.GetCourt(ctx, id)
	if err != nil {
		return domain.Court{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, c, int(s.cacheTTL.Seconds()))
	}
	return c, nil
}

func (s *QueryService) GetRating(ctx context.Context, courtID int64, src domain.Source) (domain.Rating, error) {
	key := ratingKey(courtID, src)
	var r domain.Rating
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &r); ok {
			return r, nil
		}
	}
	r, err := s.repo.GetRating(ctx, courtID, src)
	if err != nil {
		return domain.Rating{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, r, int(s.cacheTTL.Seconds()))
	}
	return r, nil
}
