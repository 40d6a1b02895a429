package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"eventmap/internal/models"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "data.json"))
}

func TestFileStore_MissingFile(t *testing.T) {
	store := tempStore(t)
	if _, err := store.Read(context.Background()); !errors.Is(err, ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := tempStore(t)
	lat, lon := -34.33, 146.9
	doc := &models.Document{
		Addresses: []models.Address{
			{Text: "12 Main St", Lat: &lat, Lon: &lon, Instructions: "side gate"},
			{Text: "no coords yet"},
		},
		Rules:         "be kind",
		AdminPassword: "$2a$12$fakehash",
	}

	if err := store.Write(context.Background(), doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(got.Addresses) != 2 {
		t.Fatalf("got %d addresses, want 2", len(got.Addresses))
	}
	if *got.Addresses[0].Lat != lat || *got.Addresses[0].Lon != lon {
		t.Errorf("coordinates did not survive the round trip: %+v", got.Addresses[0])
	}
	if got.Addresses[1].Lat != nil || got.Addresses[1].Lon != nil {
		t.Errorf("absent coordinates appeared: %+v", got.Addresses[1])
	}
	if got.Rules != doc.Rules || got.AdminPassword != doc.AdminPassword {
		t.Errorf("fields changed: %+v", got)
	}
}

func TestFileStore_AbsentCoordinatesOmittedFromJSON(t *testing.T) {
	store := tempStore(t)
	if err := store.Write(context.Background(), &models.Document{
		Addresses: []models.Address{{Text: "nowhere"}},
	}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var shape struct {
		Addresses []map[string]any `json:"addresses"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := shape.Addresses[0]["lat"]; ok {
		t.Error("lat serialized for an address without coordinates")
	}
	if _, ok := shape.Addresses[0]["lon"]; ok {
		t.Error("lon serialized for an address without coordinates")
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := store.Read(context.Background()); err == nil {
		t.Fatal("expected error reading a corrupt file")
	}
}

func TestFileStore_ConcurrentWritesNeverCorrupt(t *testing.T) {
	store := tempStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			doc := models.NewDocument("hash")
			for j := 0; j <= n; j++ {
				doc.Addresses = append(doc.Addresses, models.Address{Text: "street"})
			}
			if err := store.Write(context.Background(), doc); err != nil {
				t.Errorf("Write: %v", err)
			}
		}(i)
	}
	wg.Wait()

	// Whichever write won, the document must decode cleanly.
	doc, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read after concurrent writes: %v", err)
	}
	if doc.AdminPassword != "hash" {
		t.Errorf("document corrupted: %+v", doc)
	}
	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(store.path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in store dir: %d entries", len(entries))
	}
}

func TestFileStore_NilAddressesNormalizedOnRead(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.path, []byte(`{"rules":"","adminPassword":"h"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	doc, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Addresses == nil {
		t.Error("Addresses is nil, want empty slice")
	}
}
