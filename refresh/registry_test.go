package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/docsforge/authcore/token"
)

func newTestRegistry(t *testing.T) (*Registry, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	codec, err := token.NewCodec(token.Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Issuer: "authcore-test",
	})
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	registry, err := NewRegistry(client, codec, Config{
		TTL:       7 * 24 * time.Hour,
		Prefix:    "actest",
		OpTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}

	return registry, mr
}

func TestCreateAndIsValid(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t)

	tokenID, signed, err := registry.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if tokenID == "" || signed == "" {
		t.Fatal("expected token id and signed token")
	}

	ok, err := registry.IsValid(ctx, tokenID)
	if err != nil {
		t.Fatalf("IsValid error: %v", err)
	}
	if !ok {
		t.Fatal("expected fresh token to be valid")
	}
}

func TestCreateAssignsUniqueTokenIDs(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t)

	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		tokenID, _, err := registry.Create(ctx, "user-1")
		if err != nil {
			t.Fatalf("Create error: %v", err)
		}
		if seen[tokenID] {
			t.Fatalf("duplicate token id: %s", tokenID)
		}
		seen[tokenID] = true
	}
}

func TestIsValidUnknownToken(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t)

	ok, err := registry.IsValid(ctx, "no-such-token")
	if err != nil {
		t.Fatalf("IsValid error: %v", err)
	}
	if ok {
		t.Fatal("unknown token must be invalid")
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t)

	tokenID, _, err := registry.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := registry.Revoke(ctx, tokenID); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if err := registry.Revoke(ctx, tokenID); err != nil {
		t.Fatalf("second Revoke error: %v", err)
	}
	if err := registry.Revoke(ctx, "never-existed"); err != nil {
		t.Fatalf("Revoke of unknown token error: %v", err)
	}

	ok, err := registry.IsValid(ctx, tokenID)
	if err != nil {
		t.Fatalf("IsValid error: %v", err)
	}
	if ok {
		t.Fatal("revoked token must be invalid")
	}
}

func TestIsValidRacingRevoke(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t)

	tokenID, _, err := registry.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	const readers = 8
	start := make(chan struct{})
	errs := make(chan error, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 20; j++ {
				if _, err := registry.IsValid(ctx, tokenID); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	close(start)
	if err := registry.Revoke(ctx, tokenID); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	wg.Wait()

	close(errs)
	for err := range errs {
		t.Fatalf("IsValid racing revoke: %v", err)
	}

	// Revoke has returned, so the flip is durably recorded.
	ok, err := registry.IsValid(ctx, tokenID)
	if err != nil {
		t.Fatalf("IsValid error: %v", err)
	}
	if ok {
		t.Fatal("token must be invalid once Revoke has returned")
	}
}

func TestRevokePreservesTTL(t *testing.T) {
	ctx := context.Background()
	registry, mr := newTestRegistry(t)

	tokenID, _, err := registry.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := registry.Revoke(ctx, tokenID); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	ttl := mr.TTL("actest:rt:" + tokenID)
	if ttl <= 0 || ttl > 7*24*time.Hour {
		t.Fatalf("unexpected TTL after revoke: %v", ttl)
	}
}

func TestRevokeAll(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t)

	var ids []string
	for i := 0; i < 3; i++ {
		tokenID, _, err := registry.Create(ctx, "user-1")
		if err != nil {
			t.Fatalf("Create error: %v", err)
		}
		ids = append(ids, tokenID)
	}

	otherID, _, err := registry.Create(ctx, "user-2")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := registry.RevokeAll(ctx, "user-1"); err != nil {
		t.Fatalf("RevokeAll error: %v", err)
	}

	for _, id := range ids {
		ok, err := registry.IsValid(ctx, id)
		if err != nil {
			t.Fatalf("IsValid error: %v", err)
		}
		if ok {
			t.Fatalf("token %s should be revoked", id)
		}
	}

	ok, err := registry.IsValid(ctx, otherID)
	if err != nil {
		t.Fatalf("IsValid error: %v", err)
	}
	if !ok {
		t.Fatal("other user's token must stay valid")
	}
}

func TestRecordExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	registry, mr := newTestRegistry(t)

	tokenID, _, err := registry.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	mr.FastForward(7*24*time.Hour + time.Second)

	ok, err := registry.IsValid(ctx, tokenID)
	if err != nil {
		t.Fatalf("IsValid error: %v", err)
	}
	if ok {
		t.Fatal("expired token must be invalid")
	}
}

func TestStoreOutageFailsClosed(t *testing.T) {
	ctx := context.Background()
	registry, mr := newTestRegistry(t)

	tokenID, _, err := registry.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	mr.Close()

	if _, err := registry.IsValid(ctx, tokenID); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := registry.Revoke(ctx, tokenID); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on revoke, got %v", err)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	record := &Record{
		UserID:    "user-1",
		IssuedAt:  1700000000,
		ExpiresAt: 1700604800,
		Revoked:   false,
	}

	decoded, err := decodeRecord(encodeRecord(record))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if *decoded != *record {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, record)
	}

	if _, err := decodeRecord([]byte{recordVersionV1, 0, 1}); !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("expected ErrRecordCorrupt, got %v", err)
	}
	if _, err := decodeRecord(append([]byte{9}, make([]byte, 19)...)); !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("expected ErrRecordCorrupt for unknown version, got %v", err)
	}
}
