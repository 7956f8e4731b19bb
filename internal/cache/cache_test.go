package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("GetSetRoundTrip", func(t *testing.T) {
		c := NewMemoryCache(DefaultTTL)

		// Initially empty
		entry, err := c.Get(ctx, "k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry != nil {
			t.Fatalf("expected miss on empty cache, got %v", entry)
		}

		err = c.Set(ctx, "k", &Entry{Content: "QUJD", ContentType: "application/pdf"})
		if err != nil {
			t.Fatalf("unexpected error on set: %v", err)
		}

		entry, err = c.Get(ctx, "k")
		if err != nil {
			t.Fatalf("unexpected error on get: %v", err)
		}
		if entry == nil {
			t.Fatal("expected entry, got miss")
		}
		if entry.Content != "QUJD" {
			t.Errorf("expected content QUJD, got %q", entry.Content)
		}
		if entry.ContentType != "application/pdf" {
			t.Errorf("expected application/pdf, got %q", entry.ContentType)
		}
		if entry.CachedAt.IsZero() {
			t.Error("expected CachedAt to be stamped")
		}
	})

	t.Run("StaleEntryIsAMiss", func(t *testing.T) {
		c := NewMemoryCache(5 * time.Minute)

		current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return current }

		if err := c.Set(ctx, "k", &Entry{Content: "QUJD", ContentType: "text/plain"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Just inside the TTL
		current = current.Add(5 * time.Minute)
		entry, err := c.Get(ctx, "k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry == nil {
			t.Fatal("entry at exactly TTL should still hit")
		}

		// Past the TTL
		current = current.Add(time.Second)
		entry, err = c.Get(ctx, "k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry != nil {
			t.Fatal("stale entry should behave as a miss")
		}
	})

	t.Run("Invalidate", func(t *testing.T) {
		c := NewMemoryCache(DefaultTTL)

		if err := c.Set(ctx, "k", &Entry{Content: "x"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := c.Invalidate(ctx, "k"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entry, err := c.Get(ctx, "k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry != nil {
			t.Fatal("expected miss after invalidate")
		}

		// Invalidating a missing key is not an error
		if err := c.Invalidate(ctx, "missing"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SetDoesNotAliasCallerEntry", func(t *testing.T) {
		c := NewMemoryCache(DefaultTTL)

		entry := &Entry{Content: "before"}
		if err := c.Set(ctx, "k", entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entry.Content = "after"

		got, err := c.Get(ctx, "k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Content != "before" {
			t.Errorf("cache aliased caller memory: got %q", got.Content)
		}
	})
}

func TestKeyFor(t *testing.T) {
	t.Run("JoinsWithSeparator", func(t *testing.T) {
		if got := KeyFor("center1", "doc9", "cert.pdf"); got != "center1_doc9_cert.pdf" {
			t.Errorf("KeyFor = %q, want center1_doc9_cert.pdf", got)
		}
	})

	t.Run("DistinctTuplesDistinctKeys", func(t *testing.T) {
		pairs := [][2][]string{
			{{"a", "b"}, {"a", "c"}},
			{{"a", "b"}, {"ab", ""}},
			{{"a_b", "c"}, {"a", "b_c"}},
			{{"a", "b", "c"}, {"a", "b_c"}},
			{{`a\`, "_b"}, {"a", `\_b`}},
		}
		for _, p := range pairs {
			k1, k2 := KeyFor(p[0]...), KeyFor(p[1]...)
			if k1 == k2 {
				t.Errorf("KeyFor(%v) == KeyFor(%v) == %q", p[0], p[1], k1)
			}
		}
	})
}
