package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"Planner/internal/clock"
	dom "Planner/internal/domain"
	"Planner/internal/notify"
	"Planner/internal/repo"
	"Planner/internal/store"

	"golang.org/x/sync/singleflight"

	"Planner/internal/cache"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// TaskService is the lifecycle engine: it owns creation, partial update,
// completion toggling, deletion, display ordering, derived statistics, and
// the reminder scheduling tied to each of those. Reminders are best-effort:
// scheduling and handle bookkeeping are logged and swallowed on failure,
// never letting a notification problem undo a persisted task.
type TaskService struct {
	repo      repo.TaskRepo
	profiles  repo.ProfileRepo
	scheduler notify.Scheduler
	reminders *repo.ReminderIndex
	cache     *cache.TaskCache
	now       clock.Now
	sf        singleflight.Group
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, p repo.ProfileRepo, sched notify.Scheduler, idx *repo.ReminderIndex, c *cache.TaskCache, now clock.Now) *TaskService {
	return &TaskService{repo: r, profiles: p, scheduler: sched, reminders: idx, cache: c, now: now}
}

func (s *TaskService) Create(ctx context.Context, in repo.TaskInput) (dom.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return dom.Task{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}

	t, err := s.repo.Create(ctx, in)
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	s.scheduleReminder(ctx, t)
	return t, nil
}

// GetByID returns one task, or ErrNotFound.
func (s *TaskService) GetByID(ctx context.Context, id string) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	return t, nil
}

// Update applies a partial patch. A missing id is a silent no-op at the
// repository, so no reminder is touched for it either.
func (s *TaskService) Update(ctx context.Context, id string, patch repo.TaskPatch) error {
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		patch.Title = &trimmed
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return err
	}
	s.invalidateCache(ctx)

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil // vanished or was never there; nothing to reschedule
	}
	s.scheduleReminder(ctx, t)
	return nil
}

// ToggleComplete flips the completed flag and returns the updated task.
// Completing a task cancels its pending reminder; reopening reschedules.
func (s *TaskService) ToggleComplete(ctx context.Context, id string) (dom.Task, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return dom.Task{}, err
	}
	completed := !t.Completed
	if err := s.repo.Update(ctx, id, repo.TaskPatch{Completed: &completed}); err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)

	if completed {
		s.cancelReminder(ctx, id)
	} else {
		t.Completed = false
		s.scheduleReminder(ctx, t)
	}
	return s.GetByID(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	s.cancelReminder(ctx, id)
	return nil
}

// ListForDisplay returns all tasks ordered for the list view: incomplete
// before completed, then ascending due instant within each group. The sort
// is stable, so equal keys keep their stored order; tasks with an
// unparsable date or time sink to the end of their group.
func (s *TaskService) ListForDisplay(ctx context.Context) ([]dom.Task, error) {
	list, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	// Concurrent callers deduped by singleflight share one slice; sort a copy
	// so nobody mutates a result another caller is still reading.
	out := append([]dom.Task(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		ad, aok := clock.DueInstant(a.Date, a.Time)
		bd, bok := clock.DueInstant(b.Date, b.Time)
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		return ad.Before(bd)
	})
	return out, nil
}

// TodayTasks returns tasks dated today, regardless of completion.
func (s *TaskService) TodayTasks(ctx context.Context) ([]dom.Task, error) {
	list, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := []dom.Task{}
	for _, t := range list {
		if clock.IsToday(t.Date, now) {
			out = append(out, t)
		}
	}
	return out, nil
}

// OverdueTasks returns incomplete tasks whose due instant has passed.
func (s *TaskService) OverdueTasks(ctx context.Context) ([]dom.Task, error) {
	list, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := []dom.Task{}
	for _, t := range list {
		if clock.IsOverdue(t, now) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Statistics recomputes the aggregate counts from the live collection.
func (s *TaskService) Statistics(ctx context.Context) (dom.TaskStatistics, error) {
	list, err := s.list(ctx)
	if err != nil {
		return dom.TaskStatistics{}, err
	}
	stats := dom.TaskStatistics{TotalTasks: len(list)}
	for _, t := range list {
		if t.Completed {
			stats.CompletedTasks++
		}
	}
	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks
	if stats.TotalTasks > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100))
	}
	return stats, nil
}

func (s *TaskService) list(ctx context.Context) ([]dom.Task, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("list", func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Task), nil
	}
	return s.repo.List(ctx)
}

// scheduleReminder cancels any tracked reminder for the task and schedules a
// fresh one at its due instant. Completed tasks only cancel, they never get a
// new reminder. Requires a configured profile; the reminder names the user.
// Every failure path here is non-fatal.
func (s *TaskService) scheduleReminder(ctx context.Context, t dom.Task) {
	if t.Completed {
		s.cancelReminder(ctx, t.ID)
		return
	}
	p, err := s.profiles.Get(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("reminder: load profile: %v", err)
		}
		return
	}
	s.cancelReminder(ctx, t.ID)

	due, ok := clock.DueInstant(t.Date, t.Time)
	if !ok {
		return
	}
	title := "Task Reminder for " + displayName(p)
	body := "Don't forget: " + t.Title
	h, ok := s.scheduler.Schedule(ctx, due, title, body, t.ID)
	if !ok {
		return
	}
	if err := s.reminders.SetHandle(ctx, t.ID, string(h)); err != nil {
		log.Printf("reminder: track handle for task %s: %v", t.ID, err)
	}
}

func (s *TaskService) cancelReminder(ctx context.Context, taskID string) {
	h, err := s.reminders.Handle(ctx, taskID)
	if err != nil {
		log.Printf("reminder: load handle for task %s: %v", taskID, err)
		return
	}
	if h == "" {
		return
	}
	s.scheduler.Cancel(notify.Handle(h))
	if err := s.reminders.RemoveHandle(ctx, taskID); err != nil {
		log.Printf("reminder: drop handle for task %s: %v", taskID, err)
	}
}

func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}

func displayName(p dom.Profile) string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
