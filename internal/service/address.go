// Package service implements the server-side operations behind the HTTP API:
// address list replacement with geocode-on-save, rules get/set, and password
// management against the single persisted document.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"eventmap/internal/models"
	"eventmap/internal/storage"
	"eventmap/pkg/geocode"
)

// Geocoder resolves free text to coordinates. Implementations pace their own
// calls; the service makes at most one attempt per address per save.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*geocode.Result, error)
}

// AddressService replaces the persisted address list wholesale, geocoding
// entries that arrive without coordinates.
type AddressService struct {
	store      storage.Store
	geocoder   Geocoder
	normalizer *Normalizer
	log        zerolog.Logger
}

// NewAddressService wires the service to its store and geocoder.
func NewAddressService(store storage.Store, geocoder Geocoder, normalizer *Normalizer, log zerolog.Logger) *AddressService {
	return &AddressService{
		store:      store,
		geocoder:   geocoder,
		normalizer: normalizer,
		log:        log.With().Str("component", "addresses").Logger(),
	}
}

// List returns the persisted address list verbatim.
func (s *AddressService) List(ctx context.Context) ([]models.Address, error) {
	doc, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Addresses, nil
}

// Replace substitutes the entire stored list with addrs in one write. Every
// entry with text but without a full coordinate pair gets exactly one geocode
// attempt; a failed lookup leaves that entry coordinate-less and does not
// abort the batch. With N entries to geocode the call blocks for at least
// N times the geocoder's pacing interval before returning.
func (s *AddressService) Replace(ctx context.Context, addrs []models.Address) error {
	if addrs == nil {
		addrs = []models.Address{}
	}

	for i := range addrs {
		if s.normalizer.Enabled() && addrs[i].Text != "" {
			addrs[i].Text = s.normalizer.Canonical(addrs[i].Text)
		}
		if addrs[i].Text == "" || addrs[i].HasCoordinates() {
			continue
		}
		// Never persist a half-set pair; geocoding either fills both
		// coordinates or the entry stays without any.
		addrs[i].ClearCoordinates()

		result, err := s.geocoder.Geocode(ctx, addrs[i].Text)
		if err != nil {
			s.log.Warn().Err(err).Str("text", addrs[i].Text).Msg("geocoding failed, saving without coordinates")
			continue
		}
		addrs[i].SetCoordinates(result.Lat, result.Lon)
	}

	doc, err := s.store.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	doc.Addresses = addrs
	if err := s.store.Write(ctx, doc); err != nil {
		return fmt.Errorf("failed to persist addresses: %w", err)
	}
	s.log.Info().Int("count", len(addrs)).Msg("address list replaced")
	return nil
}
