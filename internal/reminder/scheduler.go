// Package reminder schedules local notifications ahead of booked sessions and
// keeps a durable snapshot so pending reminders survive a restart.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/example/conference-assistant/internal/persistence"
)

// timerHandle abstracts a cancellable one-shot timer.
type timerHandle interface {
	Stop() bool
}

// timerFactory arms a one-shot timer. The default wraps time.AfterFunc; tests
// install a factory that fires manually so they never sleep.
type timerFactory func(d time.Duration, fn func()) timerHandle

func afterFuncFactory(d time.Duration, fn func()) timerHandle {
	return time.AfterFunc(d, fn)
}

type task struct {
	snapshot TaskSnapshot
	timer    timerHandle
}

// Scheduler maintains the live map of pending reminder tasks. Timer callbacks
// run on their own goroutines, so all task-map access is mutex-guarded; by
// the time Schedule or Cancel returns, the live map reflects the new state.
type Scheduler struct {
	mu        sync.Mutex
	tasks     map[string]*task
	prefs     persistence.UserPreferences
	notifier  Notifier
	snapshots SnapshotStore
	now       func() time.Time
	newTimer  timerFactory
	logger    *slog.Logger
}

// NewScheduler wires dependencies for reminder scheduling.
func NewScheduler(notifier Notifier, snapshots SnapshotStore, now func() time.Time, logger *slog.Logger) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		tasks:     make(map[string]*task),
		notifier:  notifier,
		snapshots: snapshots,
		now:       now,
		newTimer:  afterFuncFactory,
		logger:    logger,
	}
}

// SetPreferences updates the preferences consulted by scheduling decisions
// and notification payloads.
func (s *Scheduler) SetPreferences(prefs persistence.UserPreferences) {
	s.mu.Lock()
	s.prefs = prefs
	s.mu.Unlock()
}

// TaskID derives the live-map key for a session/offset pair. Re-scheduling
// the same key cancels and replaces the prior timer.
func TaskID(sessionID string, minutesBefore int) string {
	return fmt.Sprintf("%s-%d", sessionID, minutesBefore)
}

// Schedule arms a reminder that fires minutesBefore the session start. A fire
// time already in the past is skipped; past-due reminders are not backfilled
// at creation time.
func (s *Scheduler) Schedule(ctx context.Context, session persistence.Session, booking persistence.Booking, minutesBefore int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.prefs.NotificationsEnabled {
		return nil
	}

	startAt, err := SessionStart(session)
	if err != nil {
		return fmt.Errorf("cannot schedule reminder for %s: %w", session.ID, err)
	}

	now := s.now()
	fireAt := startAt.Add(-time.Duration(minutesBefore) * time.Minute)
	if !fireAt.After(now) {
		return nil
	}

	id := TaskID(session.ID, minutesBefore)
	s.removeLocked(id)

	snapshot := TaskSnapshot{
		ID:             id,
		SessionID:      session.ID,
		SessionTitle:   session.Title,
		SessionStartAt: startAt,
		FireAt:         fireAt,
		MinutesBefore:  minutesBefore,
	}
	s.armLocked(snapshot, fireAt.Sub(now))
	s.persistLocked(ctx)
	return nil
}

// ScheduleMultiple fans Schedule out over several offsets.
func (s *Scheduler) ScheduleMultiple(ctx context.Context, session persistence.Session, booking persistence.Booking, offsets []int) error {
	for _, minutes := range offsets {
		if err := s.Schedule(ctx, session, booking, minutes); err != nil {
			return err
		}
	}
	return nil
}

// Cancel stops and removes a single task. Unknown IDs are ignored.
func (s *Scheduler) Cancel(ctx context.Context, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeLocked(taskID) {
		s.persistLocked(ctx)
	}
}

// CancelForSession stops and removes every task tied to a session.
func (s *Scheduler) CancelForSession(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	for id, t := range s.tasks {
		if t.snapshot.SessionID == sessionID {
			if t.timer != nil {
				t.timer.Stop()
			}
			delete(s.tasks, id)
			removed = true
		}
	}
	if removed {
		s.persistLocked(ctx)
	}
}

// ActiveTasks returns a copy of every live task snapshot.
func (s *Scheduler) ActiveTasks() []TaskSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]TaskSnapshot, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t.snapshot)
	}
	sortSnapshots(tasks)
	return tasks
}

// TasksForSession returns the live task snapshots tied to a session.
func (s *Scheduler) TasksForSession(sessionID string) []TaskSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]TaskSnapshot, 0)
	for _, t := range s.tasks {
		if t.snapshot.SessionID == sessionID {
			tasks = append(tasks, t.snapshot)
		}
	}
	sortSnapshots(tasks)
	return tasks
}

// Restore reconciles the persisted snapshot with the current time: overdue
// reminders whose session has not started fire immediately, future reminders
// are re-armed, and stale entries are dropped. Afterwards the snapshot is
// rewritten from the live set.
func (s *Scheduler) Restore(ctx context.Context) error {
	entries, err := s.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return err
	}

	overdue := make([]TaskSnapshot, 0)

	s.mu.Lock()
	now := s.now()
	for _, entry := range entries {
		switch {
		case !entry.SessionStartAt.After(now):
			// Session already started; the entry is stale.
		case !entry.FireAt.After(now):
			overdue = append(overdue, entry)
		default:
			s.removeLocked(entry.ID)
			s.armLocked(entry, entry.FireAt.Sub(now))
		}
	}
	s.dropStartedLocked(now)
	s.persistLocked(ctx)
	prefs := s.prefs
	s.mu.Unlock()

	for _, entry := range overdue {
		s.deliver(ctx, entry, prefs)
	}
	return nil
}

// ClearAll stops every timer, empties the live map and removes the snapshot.
func (s *Scheduler) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	for id, t := range s.tasks {
		if t.timer != nil {
			t.timer.Stop()
		}
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	return s.snapshots.ClearSnapshot(ctx)
}

// SessionStart combines a session's date and start time in the local
// timezone.
func SessionStart(session persistence.Session) (time.Time, error) {
	startAt, err := time.ParseInLocation("2006-01-02 15:04", session.Date+" "+session.StartTime, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid session start: %w", err)
	}
	return startAt, nil
}

// armLocked registers a task and starts its timer. Caller holds the mutex.
func (s *Scheduler) armLocked(snapshot TaskSnapshot, delay time.Duration) {
	t := &task{snapshot: snapshot}
	t.timer = s.newTimer(delay, func() { s.fire(snapshot.ID) })
	s.tasks[snapshot.ID] = t
}

// removeLocked stops and deletes a task. Caller holds the mutex.
func (s *Scheduler) removeLocked(id string) bool {
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	delete(s.tasks, id)
	return true
}

// dropStartedLocked garbage-collects live tasks whose session has already
// started. Caller holds the mutex.
func (s *Scheduler) dropStartedLocked(now time.Time) {
	for id, t := range s.tasks {
		if !t.snapshot.SessionStartAt.After(now) {
			if t.timer != nil {
				t.timer.Stop()
			}
			delete(s.tasks, id)
		}
	}
}

// fire runs on the timer goroutine when a reminder comes due.
func (s *Scheduler) fire(taskID string) {
	ctx := context.Background()

	s.mu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.tasks, taskID)
	snapshot := t.snapshot
	prefs := s.prefs
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.deliver(ctx, snapshot, prefs)
}

func (s *Scheduler) deliver(ctx context.Context, snapshot TaskSnapshot, prefs persistence.UserPreferences) {
	notification := Notification{
		Title:              "Session reminder",
		Body:               fmt.Sprintf("%s starts in %d minutes\nTime: %s", snapshot.SessionTitle, snapshot.MinutesBefore, snapshot.SessionStartAt.Format("Jan 2, 15:04")),
		Tag:                "session-reminder-" + snapshot.ID,
		RequireInteraction: true,
		SoundEnabled:       prefs.SoundEnabled,
		VibrationEnabled:   prefs.VibrationEnabled,
	}
	if err := s.notifier.Notify(ctx, notification); err != nil {
		s.logger.Error("failed to deliver reminder", "task", snapshot.ID, "error", err)
	}
}

// persistLocked rewrites the snapshot from the live task map. Caller holds
// the mutex. Snapshot failures are logged, never propagated: the live timers
// remain correct even when the recovery aid cannot be written.
func (s *Scheduler) persistLocked(ctx context.Context) {
	tasks := make([]TaskSnapshot, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t.snapshot)
	}
	sortSnapshots(tasks)

	if err := s.snapshots.SaveSnapshot(ctx, tasks); err != nil {
		s.logger.Error("failed to persist reminder snapshot", "error", err)
	}
}

func sortSnapshots(tasks []TaskSnapshot) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].FireAt.Equal(tasks[j].FireAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].FireAt.Before(tasks[j].FireAt)
	})
}
