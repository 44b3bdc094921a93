package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"Planner/internal/clock"
	dom "Planner/internal/domain"
	"Planner/internal/store"

	"github.com/google/uuid"
)

// TaskInput is what the caller supplies at creation; id and timestamps are
// assigned by the repository.
type TaskInput struct {
	Title       string
	Description string
	Date        string
	Time        string
	Completed   bool
}

// TaskPatch lists the mutable fields only. Nil means "leave unchanged".
// ID and CreatedAt cannot be touched by construction.
type TaskPatch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Completed   *bool
}

type TaskRepo interface {
	List(ctx context.Context) ([]dom.Task, error)
	GetByID(ctx context.Context, id string) (dom.Task, error)
	Create(ctx context.Context, in TaskInput) (dom.Task, error)
	Update(ctx context.Context, id string, patch TaskPatch) error
	Delete(ctx context.Context, id string) error
}

// StoreTaskRepo keeps the whole collection as one serialized array under one
// key and rewrites it on every mutation. Collection sizes are personal task
// lists, so the read-modify-write cost is irrelevant, and a failed write
// leaves the previous array untouched.
type StoreTaskRepo struct {
	st  store.Store
	now clock.Now

	// newID is swappable for deterministic tests.
	newID func() string
}

func NewStoreTaskRepo(st store.Store, now clock.Now) *StoreTaskRepo {
	return &StoreTaskRepo{st: st, now: now, newID: uuid.NewString}
}

// List returns all tasks in insertion order. A missing or unparsable
// collection reads as "no tasks yet", not as a failure.
func (r *StoreTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	return r.load(ctx)
}

// GetByID returns the task with the given id, or store.ErrNotFound.
func (r *StoreTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	tasks, err := r.load(ctx)
	if err != nil {
		return dom.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return dom.Task{}, store.ErrNotFound
}

func (r *StoreTaskRepo) Create(ctx context.Context, in TaskInput) (dom.Task, error) {
	tasks, err := r.load(ctx)
	if err != nil {
		return dom.Task{}, err
	}
	now := r.now().UTC()
	t := dom.Task{
		ID:          r.newID(),
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
		Completed:   in.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.save(ctx, append(tasks, t)); err != nil {
		return dom.Task{}, err
	}
	return t, nil
}

// Update merges patch over the task with the given id and bumps UpdatedAt.
// A missing id is a silent no-op; callers needing confirmation re-read.
func (r *StoreTaskRepo) Update(ctx context.Context, id string, patch TaskPatch) error {
	tasks, err := r.load(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		applyPatch(&tasks[i], patch)
		tasks[i].UpdatedAt = r.now().UTC()
		changed = true
		break
	}
	if !changed {
		return nil
	}
	return r.save(ctx, tasks)
}

// Delete removes the task with the given id. Deleting a missing id is a
// silent no-op and does not rewrite the collection.
func (r *StoreTaskRepo) Delete(ctx context.Context, id string) error {
	tasks, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return nil
	}
	return r.save(ctx, kept)
}

func applyPatch(t *dom.Task, p TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Time != nil {
		t.Time = *p.Time
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

func (r *StoreTaskRepo) load(ctx context.Context) ([]dom.Task, error) {
	b, err := r.st.Get(ctx, store.KeyTasks)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w: %w", ErrPersistence, err)
	}
	var tasks []dom.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		// Corrupt collection reads as empty; the next save replaces it.
		return nil, nil
	}
	return tasks, nil
}

func (r *StoreTaskRepo) save(ctx context.Context, tasks []dom.Task) error {
	if tasks == nil {
		tasks = []dom.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w: %w", ErrPersistence, err)
	}
	if err := r.st.Set(ctx, store.KeyTasks, b); err != nil {
		return fmt.Errorf("save tasks: %w: %w", ErrPersistence, err)
	}
	return nil
}
