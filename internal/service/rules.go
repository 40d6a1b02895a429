package service

import (
	"context"
	"fmt"

	"eventmap/internal/storage"
)

// RulesService reads and replaces the site rules text. The text is opaque to
// the server; consumers are responsible for safe rendering.
type RulesService struct {
	store storage.Store
}

func NewRulesService(store storage.Store) *RulesService {
	return &RulesService{store: store}
}

// Rules returns the persisted rules text.
func (s *RulesService) Rules(ctx context.Context) (string, error) {
	doc, err := s.store.Read(ctx)
	if err != nil {
		return "", err
	}
	return doc.Rules, nil
}

// SetRules persists text verbatim. The empty string is a valid value.
func (s *RulesService) SetRules(ctx context.Context, text string) error {
	doc, err := s.store.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	doc.Rules = text
	if err := s.store.Write(ctx, doc); err != nil {
		return fmt.Errorf("failed to persist rules: %w", err)
	}
	return nil
}
