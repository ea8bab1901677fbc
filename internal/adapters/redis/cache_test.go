package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "nobounce_admin/internal/adapters/redis"
	"nobounce_admin/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	city := "Porto"
	in := domain.Court{ID: 3, Name: "Campo", City: &city, ImageURLs: []string{"u1", "u2"}, Version: 4}
	if err := c.Set(ctx, "court:3", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("nobounce:court:3") {
		t.Fatalf("expected prefixed key in redis, keys: %v", mr.Keys())
	}

	var out domain.Court
	ok, err := c.Get(ctx, "court:3", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Name != "Campo" || out.City == nil || *out.City != "Porto" || len(out.ImageURLs) != 2 || out.Version != 4 {
		t.Fatalf("roundtrip mismatch: %+v", out)
	}

	if err := c.Del(ctx, "court:3"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, err = c.Get(ctx, "court:3", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after delete, ok=%v err=%v", ok, err)
	}
}

func TestCache_TTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "courts:list", []domain.CourtSummary{{ID: 1, Name: "A"}}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("nobounce:courts:list"); ttl != 30*time.Second {
		t.Fatalf("ttl: got %v", ttl)
	}
	mr.FastForward(31 * time.Second)

	var out []domain.CourtSummary
	if ok, _ := c.Get(ctx, "courts:list", &out); ok {
		t.Fatalf("expected expiry")
	}
}

func TestCache_CorruptValueIsMiss(t *testing.T) {
	c, mr := newCache(t)
	if err := mr.Set("nobounce:court:1", "not-json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var out domain.Court
	ok, err := c.Get(context.Background(), "court:1", &out)
	if ok || err == nil {
		t.Fatalf("expected miss with decode error, ok=%v err=%v", ok, err)
	}
}
