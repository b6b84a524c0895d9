package apikey

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "keys.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	charLimit := int64(500)
	if err := store.Add(ctx, "key-with-char-limit", 20, &charLimit); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(ctx, "key-rate-only", 5, nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		apiKey        string
		wantFound     bool
		wantRate      int64
		wantCharLimit *int64
	}{
		{"unknown key", "nope", false, 0, nil},
		{"key with char override", "key-with-char-limit", true, 20, &charLimit},
		{"key without char override", "key-rate-only", true, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits, err := store.Lookup(ctx, tt.apiKey)
			if err != nil {
				t.Fatal(err)
			}
			if (limits != nil) != tt.wantFound {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.apiKey, limits != nil, tt.wantFound)
			}
			if limits == nil {
				return
			}
			if limits.RequestRate != tt.wantRate {
				t.Errorf("RequestRate = %d, want %d", limits.RequestRate, tt.wantRate)
			}
			switch {
			case tt.wantCharLimit == nil && limits.CharLimit != nil:
				t.Errorf("CharLimit = %d, want nil", *limits.CharLimit)
			case tt.wantCharLimit != nil && (limits.CharLimit == nil || *limits.CharLimit != *tt.wantCharLimit):
				t.Errorf("CharLimit = %v, want %d", limits.CharLimit, *tt.wantCharLimit)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, "temp", 10, nil); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(ctx, "temp"); err != nil {
		t.Fatal(err)
	}
	limits, err := store.Lookup(ctx, "temp")
	if err != nil {
		t.Fatal(err)
	}
	if limits != nil {
		t.Fatal("removed key should not resolve")
	}
}
