package app_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"nobounce_admin/internal/domain"
)

// ---- fakes ----

type ratingID struct {
	court  int64
	source domain.Source
}

type fakeRepo struct {
	mu      sync.Mutex
	nextID  int64
	courts  map[int64]domain.Court
	ratings map[ratingID]domain.Rating

	insertErr    error
	updateErr    error
	beforeUpdate func() // runs as the write starts
	updates      []domain.CourtUpdate
	gets         int
	lists        int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{courts: map[int64]domain.Court{}, ratings: map[ratingID]domain.Rating{}}
}

func (f *fakeRepo) InsertCourt(ctx context.Context, in domain.CourtFields, admin string) (domain.Court, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return domain.Court{}, f.insertErr
	}
	f.nextID++
	c := domain.Court{
		ID: f.nextID, Name: in.Name, Address: in.Address, City: in.City, District: in.District,
		Latitude: in.Latitude, Longitude: in.Longitude, InstagramURL: in.InstagramURL, TikTokURL: in.TikTokURL,
		ImageURLs: []string{}, AdminCreatedBy: &admin, Version: 1,
	}
	f.courts[c.ID] = c
	return c, nil
}

func (f *fakeRepo) UpdateCourt(ctx context.Context, id int64, u domain.CourtUpdate) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	f.updates = append(f.updates, u)
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	c, ok := f.courts[id]
	if !ok {
		return 0, nil
	}
	if u.ExpectedVersion != nil && *u.ExpectedVersion != c.Version {
		return 0, nil
	}
	if u.Fields != nil {
		c.Name, c.Address, c.City, c.District = u.Fields.Name, u.Fields.Address, u.Fields.City, u.Fields.District
		c.Latitude, c.Longitude = u.Fields.Latitude, u.Fields.Longitude
		c.InstagramURL, c.TikTokURL = u.Fields.InstagramURL, u.Fields.TikTokURL
	}
	if u.ImageURLs != nil {
		c.ImageURLs = append([]string(nil), u.ImageURLs...)
	}
	admin := u.AdminCreatedBy
	c.AdminCreatedBy = &admin
	c.Version++
	f.courts[id] = c
	return 1, nil
}

func (f *fakeRepo) UpsertRating(ctx context.Context, r domain.Rating) (domain.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[ratingID{r.CourtID, r.Source}] = r
	return r, nil
}

func (f *fakeRepo) GetCourt(ctx context.Context, id int64) (domain.Court, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	c, ok := f.courts[id]
	if !ok {
		return domain.Court{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) ListCourts(ctx context.Context) ([]domain.CourtSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	out := make([]domain.CourtSummary, 0, len(f.courts))
	for _, c := range f.courts {
		out = append(out, domain.CourtSummary{ID: c.ID, Name: c.Name, City: c.City, District: c.District})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) GetRating(ctx context.Context, courtID int64, src domain.Source) (domain.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.ratings[ratingID{courtID, src}]
	if !ok {
		return domain.Rating{}, domain.ErrNotFound
	}
	return r, nil
}

type putCall struct {
	bucket, key, contentType string
	overwrite                bool
	size                     int
}

type fakeStorage struct {
	mu     sync.Mutex
	calls  []putCall
	failOn map[string]error // by key
	objs   map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{failOn: map[string]error{}, objs: map[string][]byte{}}
}

func (s *fakeStorage) Upload(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, putCall{bucket, key, contentType, overwrite, len(data)})
	if err := s.failOn[key]; err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := s.objs[bucket+"/"+key]; exists && !overwrite {
		return errors.New("duplicate")
	}
	s.objs[bucket+"/"+key] = data
	return nil
}

func (s *fakeStorage) PublicURL(bucket, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("https://cdn.test/%s/%s", bucket, key)
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Court:
		*d = v.(domain.Court)
	case *[]domain.CourtSummary:
		*d = v.([]domain.CourtSummary)
	case *domain.Rating:
		*d = v.(domain.Rating)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

func (c *fakeCache) deleted(prefix string) bool {
	for _, k := range c.dels {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func files(names ...string) []domain.Upload {
	out := make([]domain.Upload, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Upload{Filename: n, ContentType: "image/jpeg", Data: []byte("img:" + n)})
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
