package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"eventmap/internal/models"
	"eventmap/internal/storage"
	"eventmap/pkg/geocode"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	doc      *models.Document
	writes   int
	writeErr error
}

func newMemStore(doc *models.Document) *memStore {
	if doc.Addresses == nil {
		doc.Addresses = []models.Address{}
	}
	return &memStore{doc: doc}
}

func (m *memStore) Read(ctx context.Context) (*models.Document, error) {
	if m.doc == nil {
		return nil, storage.ErrNotExist
	}
	cp := *m.doc
	if m.doc.Addresses != nil {
		cp.Addresses = make([]models.Address, len(m.doc.Addresses))
		copy(cp.Addresses, m.doc.Addresses)
	}
	return &cp, nil
}

func (m *memStore) Write(ctx context.Context, doc *models.Document) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.doc = doc
	return nil
}

// fakeGeocoder records queries and answers from a fixed table.
type fakeGeocoder struct {
	results map[string]*geocode.Result
	errs    map[string]error
	queries []string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) (*geocode.Result, error) {
	f.queries = append(f.queries, query)
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	if r, ok := f.results[query]; ok {
		return r, nil
	}
	return nil, geocode.ErrNoMatch
}

func ptr(f float64) *float64 { return &f }

func newAddressService(store storage.Store, g Geocoder, suffix string) *AddressService {
	return NewAddressService(store, g, NewNormalizer(suffix), zerolog.Nop())
}

func TestReplace_GeocodesMissingCoordinates(t *testing.T) {
	store := newMemStore(&models.Document{AdminPassword: "x"})
	g := &fakeGeocoder{results: map[string]*geocode.Result{
		"12 Main St ardlethan nsw 2665": {Lat: -34.33, Lon: 146.9},
	}}
	svc := newAddressService(store, g, "")

	err := svc.Replace(context.Background(), []models.Address{{Text: "12 Main St ardlethan nsw 2665"}})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []models.Address{{Text: "12 Main St ardlethan nsw 2665", Lat: ptr(-34.33), Lon: ptr(146.9)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stored list = %+v, want %+v", got, want)
	}
	if len(g.queries) != 1 {
		t.Errorf("geocoder called %d times, want 1", len(g.queries))
	}
}

func TestReplace_PreservesExistingCoordinates(t *testing.T) {
	store := newMemStore(&models.Document{AdminPassword: "x"})
	g := &fakeGeocoder{}
	svc := newAddressService(store, g, "")

	in := []models.Address{{Text: "5 High St", Lat: ptr(1.5), Lon: ptr(2.5), Instructions: "knock twice"}}
	if err := svc.Replace(context.Background(), in); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if len(g.queries) != 0 {
		t.Fatalf("geocoder was called for a coordinate-bearing entry: %v", g.queries)
	}
	got, _ := svc.List(context.Background())
	if *got[0].Lat != 1.5 || *got[0].Lon != 2.5 {
		t.Errorf("coordinates were altered: %+v", got[0])
	}
}

func TestReplace_FailedGeocodeDoesNotAbortBatch(t *testing.T) {
	store := newMemStore(&models.Document{AdminPassword: "x"})
	g := &fakeGeocoder{
		results: map[string]*geocode.Result{"resolvable": {Lat: 3, Lon: 4}},
		errs: map[string]error{
			"broken":  errors.New("network down"),
			"unknown": geocode.ErrNoMatch,
		},
	}
	svc := newAddressService(store, g, "")

	in := []models.Address{{Text: "broken"}, {Text: "unknown"}, {Text: "resolvable"}}
	if err := svc.Replace(context.Background(), in); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, _ := svc.List(context.Background())
	if len(got) != 3 {
		t.Fatalf("stored %d entries, want 3", len(got))
	}
	if got[0].HasCoordinates() || got[1].HasCoordinates() {
		t.Errorf("failed entries gained coordinates: %+v", got[:2])
	}
	if !got[2].HasCoordinates() {
		t.Errorf("later entry missed its own geocode chance: %+v", got[2])
	}
	if len(g.queries) != 3 {
		t.Errorf("geocoder called %d times, want 3 (once per entry)", len(g.queries))
	}
}

func TestReplace_RoundTripIsNoOp(t *testing.T) {
	seed := []models.Address{
		{Text: "1 First St", Lat: ptr(-34.1), Lon: ptr(146.1)},
		{Text: "2 Second St", Lat: ptr(-34.2), Lon: ptr(146.2), Instructions: "side gate"},
	}
	store := newMemStore(&models.Document{Addresses: seed, Rules: "be kind", AdminPassword: "x"})
	g := &fakeGeocoder{}
	svc := newAddressService(store, g, "")

	listed, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := svc.Replace(context.Background(), listed); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if len(g.queries) != 0 {
		t.Errorf("round-trip invoked the geocoder: %v", g.queries)
	}
	after, _ := store.Read(context.Background())
	if !reflect.DeepEqual(after.Addresses, seed) {
		t.Errorf("round-trip changed the document: %+v", after.Addresses)
	}
	if after.Rules != "be kind" || after.AdminPassword != "x" {
		t.Errorf("round-trip touched unrelated fields: %+v", after)
	}
}

func TestReplace_ClearsHalfSetPairOnFailure(t *testing.T) {
	store := newMemStore(&models.Document{AdminPassword: "x"})
	g := &fakeGeocoder{errs: map[string]error{"lone lat": geocode.ErrNoMatch}}
	svc := newAddressService(store, g, "")

	in := []models.Address{{Text: "lone lat", Lat: ptr(9.9)}}
	if err := svc.Replace(context.Background(), in); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, _ := svc.List(context.Background())
	if got[0].Lat != nil || got[0].Lon != nil {
		t.Errorf("half-set coordinate pair survived the save: %+v", got[0])
	}
}

func TestReplace_AppendsConfiguredSuffix(t *testing.T) {
	store := newMemStore(&models.Document{AdminPassword: "x"})
	g := &fakeGeocoder{results: map[string]*geocode.Result{
		"12 Main St ardlethan nsw 2665": {Lat: -34.33, Lon: 146.9},
	}}
	svc := newAddressService(store, g, "ardlethan nsw 2665")

	if err := svc.Replace(context.Background(), []models.Address{{Text: "12 Main St"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, _ := svc.List(context.Background())
	if got[0].Text != "12 Main St ardlethan nsw 2665" {
		t.Errorf("text = %q, want suffixed form", got[0].Text)
	}
}

func TestReplace_EmptyListIsValid(t *testing.T) {
	store := newMemStore(&models.Document{
		Addresses:     []models.Address{{Text: "old"}},
		AdminPassword: "x",
	})
	svc := newAddressService(store, &fakeGeocoder{}, "")

	if err := svc.Replace(context.Background(), nil); err != nil {
		t.Fatalf("Replace(nil): %v", err)
	}
	got, _ := svc.List(context.Background())
	if len(got) != 0 {
		t.Errorf("list not emptied: %+v", got)
	}
	if got == nil {
		t.Error("stored list is nil, want empty slice")
	}
}

func TestReplace_WriteFailureSurfaces(t *testing.T) {
	store := newMemStore(&models.Document{AdminPassword: "x"})
	store.writeErr = errors.New("disk full")
	svc := newAddressService(store, &fakeGeocoder{}, "")

	err := svc.Replace(context.Background(), []models.Address{{Text: "a", Lat: ptr(1), Lon: ptr(2)}})
	if err == nil {
		t.Fatal("expected error when the store write fails")
	}
}
