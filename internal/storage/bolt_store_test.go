package storage

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	bolt "go.etcd.io/bbolt"
)

func TestBoltStoreRecordsAndListsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	storeRaw, err := openBolt(dir+"/history.db", normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{From: "Carrie Fisher", To: "Kevin Bacon", Kind: "graph", Path: []string{"Carrie Fisher", "M", "Kevin Bacon"}, LookedUpAt: base},
		{From: "Anthony Perkns", To: "Kevin Bacon", Kind: "spellcheck", LookedUpAt: base.Add(time.Minute)},
		{From: "Ian McKellen", To: "Kevin Bacon", Kind: "error", Detail: "Unauthorized access", LookedUpAt: base.Add(time.Minute)},
	}
	for _, e := range entries {
		if err := store.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	want := []Entry{entries[2], entries[1]}
	if diff := cmp.Diff(want, recent); diff != "" {
		t.Fatalf("recent mismatch (-want +got):\n%s", diff)
	}

	all, err := store.Recent(10)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d err=%v", len(all), err)
	}
}

func TestBoltStoreExpiresEntries(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		HistoryTTL:      time.Hour,
		CleanupInterval: time.Hour,
	}

	storeRaw, err := openBolt(dir+"/history.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	now := time.Now()
	store.now = func() time.Time { return now }
	if err := store.Record(Entry{From: "a", To: "b", Kind: "graph"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	recent, err := store.Recent(5)
	if err != nil || len(recent) != 1 {
		t.Fatalf("expected entry to be visible, got %d err=%v", len(recent), err)
	}
	if recent[0].LookedUpAt.IsZero() {
		t.Fatalf("expected LookedUpAt to default to now")
	}

	// Jump past both the TTL and the cleanup cadence.
	now = now.Add(2 * time.Hour)
	recent, err = store.Recent(5)
	if err != nil || len(recent) != 0 {
		t.Fatalf("expected expired entry to be hidden, got %d err=%v", len(recent), err)
	}

	if err := store.Record(Entry{From: "c", To: "d", Kind: "graph"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	var keys int
	if err := store.db.View(func(tx *bolt.Tx) error {
		keys = tx.Bucket([]byte(historyBucket)).Stats().KeyN
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if keys != 1 {
		t.Fatalf("expected cleanup to drop the expired entry, %d keys remain", keys)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(Entry{From: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if recent, _ := store.Recent(3); recent != nil {
		t.Fatalf("expected no history from noop store")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected unsupported type error")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected missing path error")
	}
}
