// Package admin holds the editing state for the address list. The Editor
// keeps an in-memory working copy mirroring server state; every transition
// submits the full desired list and then re-fetches the canonical one, so
// server-side geocoding results (and any concurrent edits, last-write-wins)
// are reflected rather than trusted locally.
package admin

import (
	"context"
	"fmt"

	"eventmap/internal/models"
	"eventmap/internal/service"
)

// ListClient fetches and replaces the server's address list.
type ListClient interface {
	Fetch(ctx context.Context) ([]models.Address, error)
	Replace(ctx context.Context, list []models.Address) error
}

// Editor drives the add/edit/delete/set-location transitions. It is not safe
// for concurrent use; the site assumes a single admin.
type Editor struct {
	client     ListClient
	normalizer *service.Normalizer
	geocoder   service.Geocoder

	fallbackLat float64
	fallbackLon float64

	list []models.Address
}

// NewEditor returns an editor with an empty working copy; call Load before
// editing. The geocoder seeds the location picker and may be nil if picking
// is not needed.
func NewEditor(client ListClient, normalizer *service.Normalizer, geocoder service.Geocoder, fallbackLat, fallbackLon float64) *Editor {
	return &Editor{
		client:      client,
		normalizer:  normalizer,
		geocoder:    geocoder,
		fallbackLat: fallbackLat,
		fallbackLon: fallbackLon,
	}
}

// Load replaces the working copy with the server's list.
func (e *Editor) Load(ctx context.Context) error {
	list, err := e.client.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch address list: %w", err)
	}
	e.list = list
	return nil
}

// Addresses returns a copy of the working list.
func (e *Editor) Addresses() []models.Address {
	return append([]models.Address(nil), e.list...)
}

// EditableText returns the text at position i with the canonical suffix
// stripped, the form the admin edits.
func (e *Editor) EditableText(i int) (string, error) {
	if err := e.check(i); err != nil {
		return "", err
	}
	return e.normalizer.Strip(e.list[i].Text), nil
}

// Add appends a new address with no coordinates and saves; the server
// geocodes it during the save.
func (e *Editor) Add(ctx context.Context, text, instructions string) error {
	desired := e.Addresses()
	desired = append(desired, models.Address{
		Text:         e.normalizer.Canonical(text),
		Instructions: instructions,
	})
	return e.save(ctx, desired)
}

// Edit replaces text and instructions at position i. Text is compared on the
// suffix-stripped form: a change clears the coordinates so the server
// re-geocodes, while an unchanged text keeps them.
func (e *Editor) Edit(ctx context.Context, i int, text, instructions string) error {
	if err := e.check(i); err != nil {
		return err
	}
	desired := e.Addresses()

	if e.normalizer.Strip(text) != e.normalizer.Strip(desired[i].Text) {
		desired[i].ClearCoordinates()
	}
	desired[i].Text = e.normalizer.Canonical(text)
	desired[i].Instructions = instructions
	return e.save(ctx, desired)
}

// SetLocation overwrites the coordinates at position i and saves. It is the
// post-confirmation action of the interactive picker.
func (e *Editor) SetLocation(ctx context.Context, i int, lat, lon float64) error {
	if err := e.check(i); err != nil {
		return err
	}
	desired := e.Addresses()
	desired[i].SetCoordinates(lat, lon)
	return e.save(ctx, desired)
}

// PickerSeed returns where the location picker should open for position i:
// the entry's own coordinates if present, else a geocoded best guess, else
// the configured fallback center.
func (e *Editor) PickerSeed(ctx context.Context, i int) (lat, lon float64, err error) {
	if err := e.check(i); err != nil {
		return 0, 0, err
	}
	entry := e.list[i]
	if entry.HasCoordinates() {
		return *entry.Lat, *entry.Lon, nil
	}
	if e.geocoder != nil && entry.Text != "" {
		if result, err := e.geocoder.Geocode(ctx, entry.Text); err == nil {
			return result.Lat, result.Lon, nil
		}
	}
	return e.fallbackLat, e.fallbackLon, nil
}

// Delete removes the entry at position i and saves. Interactive confirmation
// is the caller's concern.
func (e *Editor) Delete(ctx context.Context, i int) error {
	if err := e.check(i); err != nil {
		return err
	}
	desired := e.Addresses()
	desired = append(desired[:i], desired[i+1:]...)
	return e.save(ctx, desired)
}

// save submits the full desired list and re-fetches the canonical one.
func (e *Editor) save(ctx context.Context, desired []models.Address) error {
	if err := e.client.Replace(ctx, desired); err != nil {
		return fmt.Errorf("failed to save address list: %w", err)
	}
	return e.Load(ctx)
}

func (e *Editor) check(i int) error {
	if i < 0 || i >= len(e.list) {
		return fmt.Errorf("position %d out of range (%d addresses)", i, len(e.list))
	}
	return nil
}
