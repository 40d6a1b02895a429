package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"eventmap/internal/auth"
	"eventmap/internal/models"
	"eventmap/internal/storage"
)

// PasswordService changes the stored admin password hash.
type PasswordService struct {
	store storage.Store
}

func NewPasswordService(store storage.Store) *PasswordService {
	return &PasswordService{store: store}
}

// Change verifies the current password, enforces the minimum length on the
// new one, and persists the replacement hash. The old password stops
// verifying the moment the write succeeds.
func (s *PasswordService) Change(ctx context.Context, currentPassword, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return fmt.Errorf("%w: new password must be at least %d characters", ErrValidation, auth.MinPasswordLength)
	}

	doc, err := s.store.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	if !auth.CheckPassword(doc.AdminPassword, currentPassword) {
		return ErrBadCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	doc.AdminPassword = hash
	if err := s.store.Write(ctx, doc); err != nil {
		return fmt.Errorf("failed to persist password: %w", err)
	}
	return nil
}

// Bootstrap makes sure a document exists and that its stored credential is a
// hash. A fresh deployment gets an empty document seeded from the configured
// default password; a document carrying a plaintext credential (the first-run
// state of older deployments) is upgraded in place.
func Bootstrap(ctx context.Context, store storage.Store, defaultPassword string) error {
	doc, err := store.Read(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		hash, err := auth.HashPassword(defaultPassword)
		if err != nil {
			return err
		}
		log.Info().Msg("no document found, seeding initial state")
		return store.Write(ctx, models.NewDocument(hash))
	}
	if err != nil {
		return err
	}

	if !auth.IsHashed(doc.AdminPassword) {
		hash, err := auth.HashPassword(doc.AdminPassword)
		if err != nil {
			return err
		}
		doc.AdminPassword = hash
		log.Info().Msg("upgrading stored plaintext credential to a hash")
		return store.Write(ctx, doc)
	}
	return nil
}
