package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"Planner/internal/cache"
	dom "Planner/internal/domain"
	"Planner/internal/notify"
	"Planner/internal/repo"
	"Planner/internal/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingScheduler captures schedule/cancel calls instead of running timers.
type recordingScheduler struct {
	mu        sync.Mutex
	decline   bool
	scheduled []scheduledReminder
	cancelled []notify.Handle
}

type scheduledReminder struct {
	handle notify.Handle
	fireAt time.Time
	title  string
	body   string
	corrID string
}

func (s *recordingScheduler) Schedule(_ context.Context, fireAt time.Time, title, body, corrID string) (notify.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decline {
		return "", false
	}
	h := notify.Handle(uuid.NewString())
	s.scheduled = append(s.scheduled, scheduledReminder{handle: h, fireAt: fireAt, title: title, body: body, corrID: corrID})
	return h, true
}

func (s *recordingScheduler) Cancel(h notify.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, h)
}

func (s *recordingScheduler) CancelAll() {}

type fixture struct {
	svc      *TaskService
	profiles *repo.StoreProfileRepo
	idx      *repo.ReminderIndex
	sched    *recordingScheduler
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sched: &recordingScheduler{},
		now:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local),
	}
	st := store.NewMemory()
	f.profiles = repo.NewStoreProfileRepo(st)
	f.idx = repo.NewReminderIndex(st)
	nowFn := func() time.Time { return f.now }
	f.svc = NewTaskService(repo.NewStoreTaskRepo(st, nowFn), f.profiles, f.sched, f.idx, nil, nowFn)
	return f
}

func (f *fixture) withProfile(t *testing.T) {
	t.Helper()
	require.NoError(t, f.profiles.Save(context.Background(), dom.Profile{FirstName: "Ada", LastName: "Lovelace"}))
}

func (f *fixture) create(t *testing.T, title, date, timeOfDay string, completed bool) dom.Task {
	t.Helper()
	task, err := f.svc.Create(context.Background(), repo.TaskInput{
		Title: title, Date: date, Time: timeOfDay, Completed: completed,
	})
	require.NoError(t, err)
	return task
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, title := range []string{"", "   ", "\t"} {
		_, err := f.svc.Create(ctx, repo.TaskInput{Title: title, Date: "2025-03-10", Time: "18:00"})
		assert.ErrorIs(t, err, ErrValidation)
	}

	// Validation happens before any persistence attempt.
	list, err := f.svc.ListForDisplay(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateTrimsAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.Create(ctx, repo.TaskInput{
		Title:       "  Buy milk  ",
		Description: " 2 liters ",
		Date:        "2025-03-10",
		Time:        "18:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "2 liters", created.Description)

	list, err := f.svc.ListForDisplay(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, created.Title, list[0].Title)
}

func TestListForDisplayOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// B is due earlier but completed; the incomplete-first rule dominates.
	a := f.create(t, "A", "2025-03-10", "08:00", false)
	b := f.create(t, "B", "2025-03-09", "08:00", true)

	list, err := f.svc.ListForDisplay(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func TestListForDisplaySortsWithinGroups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	late := f.create(t, "late", "2025-03-12", "10:00", false)
	early := f.create(t, "early", "2025-03-10", "07:00", false)
	doneLate := f.create(t, "done late", "2025-03-15", "10:00", true)
	doneEarly := f.create(t, "done early", "2025-03-08", "10:00", true)

	list, err := f.svc.ListForDisplay(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, []string{early.ID, late.ID, doneEarly.ID, doneLate.ID},
		[]string{list[0].ID, list[1].ID, list[2].ID, list[3].ID})
}

func TestListForDisplayStableOnTies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.create(t, "first", "2025-03-10", "08:00", false)
	second := f.create(t, "second", "2025-03-10", "08:00", false)
	third := f.create(t, "third", "2025-03-10", "08:00", false)

	list, err := f.svc.ListForDisplay(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID},
		[]string{list[0].ID, list[1].ID, list[2].ID})
}

func TestListForDisplayUnparsableDueSinks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	broken := f.create(t, "broken", "someday", "late", false)
	ok := f.create(t, "ok", "2025-03-10", "08:00", false)

	list, err := f.svc.ListForDisplay(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ok.ID, list[0].ID)
	assert.Equal(t, broken.ID, list[1].ID)
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	stats, err := f.svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, dom.TaskStatistics{}, stats)

	f.create(t, "a", "2025-03-10", "08:00", true)
	f.create(t, "b", "2025-03-10", "09:00", true)
	f.create(t, "c", "2025-03-10", "10:00", true)
	f.create(t, "d", "2025-03-10", "11:00", false)

	stats, err = f.svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalTasks)
	assert.Equal(t, 3, stats.CompletedTasks)
	assert.Equal(t, 1, stats.PendingTasks)
	assert.Equal(t, 75, stats.CompletionRate)
	assert.Equal(t, stats.TotalTasks, stats.CompletedTasks+stats.PendingTasks)
}

func TestTodayAndOverduePartitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// now = 2025-03-10 09:00 local
	milk := f.create(t, "Buy milk", "2025-03-10", "18:00", false)
	f.create(t, "yesterday done", "2025-03-09", "08:00", true)
	tomorrow := f.create(t, "tomorrow", "2025-03-11", "08:00", false)

	today, err := f.svc.TodayTasks(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, milk.ID, today[0].ID)

	overdue, err := f.svc.OverdueTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	// Advance past the due instant: still today, now overdue.
	f.now = time.Date(2025, 3, 10, 19, 0, 0, 0, time.Local)

	today, err = f.svc.TodayTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, today, 1)

	overdue, err = f.svc.OverdueTasks(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, milk.ID, overdue[0].ID)
	assert.False(t, overdue[0].Completed)
	_ = tomorrow
}

func TestToggleComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task := f.create(t, "flip me", "2025-03-10", "18:00", false)

	got, err := f.svc.ToggleComplete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, task.Date, got.Date)

	got, err = f.svc.ToggleComplete(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)

	_, err = f.svc.ToggleComplete(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMissingIDIsSoftNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.withProfile(t)

	title := "ghost"
	require.NoError(t, f.svc.Update(ctx, "no-such-id", repo.TaskPatch{Title: &title}))
	assert.Empty(t, f.sched.scheduled)
}

func TestUpdateRejectsBlankTitle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task := f.create(t, "keep me", "2025-03-10", "18:00", false)
	blank := "  "
	assert.ErrorIs(t, f.svc.Update(ctx, task.ID, repo.TaskPatch{Title: &blank}), ErrValidation)

	got, err := f.svc.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.Title)
}

func TestNoReminderWithoutProfile(t *testing.T) {
	f := newFixture(t)

	f.create(t, "quiet", "2025-03-10", "18:00", false)
	assert.Empty(t, f.sched.scheduled)
}

func TestCreateSchedulesReminder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.withProfile(t)

	task := f.create(t, "Buy milk", "2025-03-10", "18:00", false)

	require.Len(t, f.sched.scheduled, 1)
	r := f.sched.scheduled[0]
	assert.Equal(t, "Task Reminder for Ada Lovelace", r.title)
	assert.Equal(t, "Don't forget: Buy milk", r.body)
	assert.Equal(t, task.ID, r.corrID)
	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.Local), r.fireAt)

	// The handle is tracked for later cancellation.
	h, err := f.idx.Handle(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, string(r.handle), h)
}

func TestUpdateCancelsBeforeRescheduling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.withProfile(t)

	task := f.create(t, "movable", "2025-03-10", "18:00", false)
	require.Len(t, f.sched.scheduled, 1)
	first := f.sched.scheduled[0].handle

	newTime := "20:00"
	require.NoError(t, f.svc.Update(ctx, task.ID, repo.TaskPatch{Time: &newTime}))

	require.Len(t, f.sched.scheduled, 2)
	assert.Equal(t, []notify.Handle{first}, f.sched.cancelled)
	assert.Equal(t, time.Date(2025, 3, 10, 20, 0, 0, 0, time.Local), f.sched.scheduled[1].fireAt)

	h, err := f.idx.Handle(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, string(f.sched.scheduled[1].handle), h)
}

func TestToggleManagesReminder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.withProfile(t)

	task := f.create(t, "flip", "2025-03-10", "18:00", false)
	require.Len(t, f.sched.scheduled, 1)
	first := f.sched.scheduled[0].handle

	// Completing cancels the pending reminder and schedules nothing new.
	_, err := f.svc.ToggleComplete(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []notify.Handle{first}, f.sched.cancelled)
	assert.Len(t, f.sched.scheduled, 1)

	h, err := f.idx.Handle(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, h)

	// Reopening schedules again.
	_, err = f.svc.ToggleComplete(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, f.sched.scheduled, 2)
}

func TestDeleteCancelsReminder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.withProfile(t)

	task := f.create(t, "doomed", "2025-03-10", "18:00", false)
	require.Len(t, f.sched.scheduled, 1)

	require.NoError(t, f.svc.Delete(ctx, task.ID))
	assert.Equal(t, []notify.Handle{f.sched.scheduled[0].handle}, f.sched.cancelled)

	h, err := f.idx.Handle(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestDeclinedScheduleTracksNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.withProfile(t)
	f.sched.decline = true

	task := f.create(t, "past due", "2025-03-01", "08:00", false)
	assert.Empty(t, f.sched.scheduled)

	h, err := f.idx.Handle(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestUnparsableDueSchedulesNothing(t *testing.T) {
	f := newFixture(t)
	f.withProfile(t)

	f.create(t, "whenever", "someday", "later", false)
	assert.Empty(t, f.sched.scheduled)
}

func TestUpdateCompletingCancelsWithoutRescheduling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.withProfile(t)

	task := f.create(t, "wrap up", "2025-03-11", "10:00", false)
	require.Len(t, f.sched.scheduled, 1)
	first := f.sched.scheduled[0].handle

	completed := true
	require.NoError(t, f.svc.Update(ctx, task.ID, repo.TaskPatch{Completed: &completed}))

	// No fresh reminder for a task that is now completed.
	assert.Equal(t, []notify.Handle{first}, f.sched.cancelled)
	assert.Len(t, f.sched.scheduled, 1)

	h, err := f.idx.Handle(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, h)
}

// sharedListClient hands the cached list to concurrent callers the way a real
// Redis client would, so the singleflight-deduped read path is exercised.
type sharedListClient struct {
	mu   sync.Mutex
	vals map[string]string
}

func (c *sharedListClient) Get(_ context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vals[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *sharedListClient) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := value.([]byte); ok {
		c.vals[key] = string(b)
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *sharedListClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.vals[k]; ok {
			delete(c.vals, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestListForDisplayConcurrentCachedCallers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.cache = cache.NewTaskCache(&sharedListClient{vals: map[string]string{}}, time.Minute)

	f.create(t, "third", "2025-03-12", "09:00", false)
	f.create(t, "first", "2025-03-10", "09:00", false)
	f.create(t, "second", "2025-03-11", "09:00", false)

	want := []string{"first", "second", "third"}
	results := make(chan []string, 16)
	var wg sync.WaitGroup
	for i := 0; i < cap(results); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := f.svc.ListForDisplay(ctx)
			if err != nil {
				results <- nil
				return
			}
			titles := make([]string, 0, len(list))
			for _, task := range list {
				titles = append(titles, task.Title)
			}
			results <- titles
		}()
	}
	wg.Wait()
	close(results)

	// Every caller sees the full, correctly ordered list even when they all
	// race through the same cached read.
	for got := range results {
		assert.Equal(t, want, got)
	}
}
