package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	dom "Planner/internal/domain"
	"Planner/internal/store"
)

// ProfileRepo provides the singleton profile record.
type ProfileRepo interface {
	// Get returns store.ErrNotFound when no profile has been saved yet;
	// that signals "not configured", not a failure.
	Get(ctx context.Context) (dom.Profile, error)
	// Save replaces the record wholesale.
	Save(ctx context.Context, p dom.Profile) error
}

// StoreProfileRepo implements ProfileRepo over the blob store.
type StoreProfileRepo struct {
	st store.Store
}

func NewStoreProfileRepo(st store.Store) *StoreProfileRepo {
	return &StoreProfileRepo{st: st}
}

func (r *StoreProfileRepo) Get(ctx context.Context) (dom.Profile, error) {
	b, err := r.st.Get(ctx, store.KeyProfile)
	if errors.Is(err, store.ErrNotFound) {
		return dom.Profile{}, store.ErrNotFound
	}
	if err != nil {
		return dom.Profile{}, fmt.Errorf("load profile: %w: %w", ErrPersistence, err)
	}
	var p dom.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		// Corrupt record reads as absent, same policy as tasks.
		return dom.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (r *StoreProfileRepo) Save(ctx context.Context, p dom.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w: %w", ErrPersistence, err)
	}
	if err := r.st.Set(ctx, store.KeyProfile, b); err != nil {
		return fmt.Errorf("save profile: %w: %w", ErrPersistence, err)
	}
	return nil
}
