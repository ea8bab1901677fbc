package shared

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_ADDR", "CACHE_TTL_SECONDS", "STORAGE_BUCKET", "MAX_UPLOAD_MB", "REDIS_DB"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.AppEnv != "prod" || c.HTTPAddr != ":8080" {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.CacheTTL != 300*time.Second {
		t.Fatalf("CacheTTL = %v", c.CacheTTL)
	}
	if c.StorageBucket != "court-images" {
		t.Fatalf("StorageBucket = %q", c.StorageBucket)
	}
	if c.MaxUploadBytes != 32<<20 {
		t.Fatalf("MaxUploadBytes = %d", c.MaxUploadBytes)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORAGE_BUCKET", "other")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("STORAGE_RPS", "12")

	c := Load()
	if c.AppEnv != "dev" || c.StorageBucket != "other" || c.StorageRPS != 12 {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.MaxUploadBytes != 5<<20 {
		t.Fatalf("MaxUploadBytes = %d", c.MaxUploadBytes)
	}
	if c.RedisDB != 0 {
		t.Fatalf("bad int should fall back, got %d", c.RedisDB)
	}
}
