package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dom "Planner/internal/domain"
	"Planner/internal/repo"
	"Planner/internal/store"
)

// ProfileService manages the singleton profile record.
type ProfileService struct {
	repo repo.ProfileRepo
}

func NewProfileService(r repo.ProfileRepo) *ProfileService {
	return &ProfileService{repo: r}
}

// Get returns the profile, or ErrNotFound when none has been configured.
func (s *ProfileService) Get(ctx context.Context) (dom.Profile, error) {
	p, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dom.Profile{}, ErrNotFound
		}
		return dom.Profile{}, err
	}
	return p, nil
}

// Save validates and replaces the profile wholesale, returning the
// normalized record as saved.
func (s *ProfileService) Save(ctx context.Context, p dom.Profile) (dom.Profile, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.FirstName == "" || p.LastName == "" {
		return dom.Profile{}, fmt.Errorf("%w: first and last name must not be empty", ErrValidation)
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return dom.Profile{}, err
	}
	return p, nil
}
