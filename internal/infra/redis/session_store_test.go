package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetGetAndExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), "quizless:")

	if err := store.Set(ctx, "state:42", []byte(`{"status":"PENDING"}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("quizless:state:42") {
		t.Fatalf("expected prefixed redis key to be set")
	}

	value, ok, err := store.Get(ctx, "state:42")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(value) != `{"status":"PENDING"}` {
		t.Fatalf("unexpected value %s", value)
	}

	mr.FastForward(61 * time.Second)
	if _, ok, err := store.Get(ctx, "state:42"); err != nil || ok {
		t.Fatalf("expected key expired, ok=%v err=%v", ok, err)
	}
}

func TestSessionStoreMissingKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), "")
	value, ok, err := store.Get(context.Background(), "results:1")
	if err != nil {
		t.Fatalf("missing key must not be an error: %v", err)
	}
	if ok || value != nil {
		t.Fatalf("expected absent key, got %q", value)
	}
}

func TestSessionStoreExpireExtendsTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), "")

	_ = store.Set(ctx, "players:7", []byte(`{"players":[]}`), time.Minute)
	if err := store.Expire(ctx, "players:7", time.Hour); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if ttl := mr.TTL("players:7"); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %s", ttl)
	}

	mr.FastForward(30 * time.Minute)
	if !mr.Exists("players:7") {
		t.Fatalf("expected key to survive past the original ttl")
	}

	if err := store.Expire(ctx, "players:7", 0); err != nil {
		t.Fatalf("expire 0: %v", err)
	}
	if mr.Exists("players:7") {
		t.Fatalf("expected non-positive ttl to remove the key")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
