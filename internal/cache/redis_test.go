package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobscout/internal/model"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedis(rdb, 300*time.Second, ""), mr
}

func TestRedis_SetThenGet(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	jobs := []model.RawJob{
		{"title": "Backend Engineer", "job_url": "https://x.example/1", model.SearchTermKey: "backend engineer"},
		{"title": "SRE", "job_url": "https://x.example/2"},
	}
	if err := c.Set(ctx, "devops:US:true:50", jobs); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if !mr.Exists(DefaultKeyPrefix + "devops:US:true:50") {
		t.Fatal("expected key to be stored under the default prefix")
	}
	if ttl := mr.TTL(DefaultKeyPrefix + "devops:US:true:50"); ttl != 300*time.Second {
		t.Errorf("TTL = %v, want 300s", ttl)
	}

	got, ok, err := c.Get(ctx, "devops:US:true:50")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get: expected hit")
	}
	if len(got) != 2 || got[0]["title"] != "Backend Engineer" || got[0][model.SearchTermKey] != "backend engineer" {
		t.Errorf("Get = %v", got)
	}
}

func TestRedis_MissAndExpiry(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "nothing"); err != nil || ok {
		t.Fatalf("Get(nothing) = ok=%v err=%v, want miss", ok, err)
	}

	if err := c.Set(ctx, "k", []model.RawJob{{"job_url": "u"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(301 * time.Second)

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("Get after expiry = ok=%v err=%v, want miss", ok, err)
	}
}

func TestRedis_CorruptPayload(t *testing.T) {
	c, mr := newTestRedis(t)
	if err := mr.Set(DefaultKeyPrefix+"bad", "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Get(context.Background(), "bad"); err == nil {
		t.Error("expected decode error for corrupt payload")
	}
}

func TestNewRedisClient_BadURL(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), "not-a-url://"); err == nil {
		t.Error("expected error for invalid redis URL")
	}
}
