package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"Planner/internal/store"
)

// ReminderIndex persists the task id → scheduler handle mapping so the
// engine can cancel a task's previous reminder before rescheduling. The
// index is best-effort bookkeeping: losing it only risks a stale reminder,
// never task data.
type ReminderIndex struct {
	st store.Store
}

func NewReminderIndex(st store.Store) *ReminderIndex {
	return &ReminderIndex{st: st}
}

// Handle returns the stored handle for the task, or "" if none is tracked.
func (r *ReminderIndex) Handle(ctx context.Context, taskID string) (string, error) {
	m, err := r.load(ctx)
	if err != nil {
		return "", err
	}
	return m[taskID], nil
}

func (r *ReminderIndex) SetHandle(ctx context.Context, taskID, handle string) error {
	m, err := r.load(ctx)
	if err != nil {
		return err
	}
	m[taskID] = handle
	return r.save(ctx, m)
}

func (r *ReminderIndex) RemoveHandle(ctx context.Context, taskID string) error {
	m, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := m[taskID]; !ok {
		return nil
	}
	delete(m, taskID)
	return r.save(ctx, m)
}

func (r *ReminderIndex) load(ctx context.Context) (map[string]string, error) {
	b, err := r.st.Get(ctx, store.KeyReminders)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load reminder index: %w: %w", ErrPersistence, err)
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return map[string]string{}, nil
	}
	return m, nil
}

func (r *ReminderIndex) save(ctx context.Context, m map[string]string) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode reminder index: %w: %w", ErrPersistence, err)
	}
	if err := r.st.Set(ctx, store.KeyReminders, b); err != nil {
		return fmt.Errorf("save reminder index: %w: %w", ErrPersistence, err)
	}
	return nil
}
