package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/newshub/newshub/internal/logging"
)

// JobFunc is the work a scheduled job performs.
type JobFunc func(ctx context.Context) error

// JobStatus is a snapshot of one registered job.
type JobStatus struct {
	Name     string     `json:"name"`
	Spec     string     `json:"spec"`
	Running  bool       `json:"running"`
	LastRun  *time.Time `json:"lastRun,omitempty"`
	LastErr  string     `json:"lastError,omitempty"`
	NextRun  *time.Time `json:"nextRun,omitempty"`
	Disabled bool       `json:"disabled"`
}

type jobState struct {
	name    string
	spec    string
	run     JobFunc
	entryID cron.EntryID

	running  bool
	lastRun  *time.Time
	lastErr  string
	disabled bool
}

// Scheduler runs registered jobs on cron schedules. Each job is
// single-flight: a tick that lands while the previous run is still going
// is skipped, never queued.
type Scheduler struct {
	cron   *cron.Cron
	logger *logging.Logger

	mu   sync.Mutex
	jobs map[string]*jobState
}

// New creates a scheduler in the given timezone.
func New(tz string, logger *logging.Logger) (*Scheduler, error) {
	loc := time.Local
	if tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler timezone %q: %w", tz, err)
		}
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logger,
		jobs:   make(map[string]*jobState),
	}, nil
}

// Register adds a job under a name with a standard 5-field cron spec.
// Registering a name again replaces the existing job: its timer is removed
// before the new one is added.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, exists := s.jobs[name]; exists {
		s.cron.Remove(old.entryID)
		delete(s.jobs, name)
		s.logger.Info("job replaced", logging.WithField("job", name))
	}

	state := &jobState{name: name, spec: spec, run: fn}
	entryID, err := s.cron.AddFunc(spec, func() {
		s.fire(context.Background(), name)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for job %q: %w", spec, name, err)
	}
	state.entryID = entryID
	s.jobs[name] = state

	s.logger.Info("job registered",
		logging.WithField("job", name),
		logging.WithField("spec", spec))

	return nil
}

// Start begins firing jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", logging.WithField("jobs", len(s.jobs)))
}

// Stop halts scheduling and waits for in-flight runs started by cron to
// finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// TriggerManually runs a job by name right now, synchronously, honoring
// the same single-flight rule as scheduled ticks. It reports whether the
// name is a registered job; an unknown name is the only false case.
func (s *Scheduler) TriggerManually(ctx context.Context, name string) bool {
	s.mu.Lock()
	_, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}

	s.logger.Info("job triggered manually", logging.WithField("job", name))
	s.fire(ctx, name)
	return true
}

// SetDisabled pauses or resumes a job. Disabled jobs stay registered and
// visible in status but neither cron ticks nor manual triggers run them.
func (s *Scheduler) SetDisabled(name string, disabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.jobs[name]
	if !ok {
		return false
	}
	state.disabled = disabled
	return true
}

// Status reports every registered job, sorted by name.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, state := range s.jobs {
		status := JobStatus{
			Name:     state.name,
			Spec:     state.spec,
			Running:  state.running,
			LastRun:  state.lastRun,
			LastErr:  state.lastErr,
			Disabled: state.disabled,
		}
		if next := s.cron.Entry(state.entryID).Next; !next.IsZero() {
			status.NextRun = &next
		}
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// fire runs one job if it is enabled and not already running. The running
// flag is checked and set under the same lock acquisition, so concurrent
// ticks cannot both pass.
func (s *Scheduler) fire(ctx context.Context, name string) {
	s.mu.Lock()
	state, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return
	}
	if state.disabled {
		s.mu.Unlock()
		return
	}
	if state.running {
		s.mu.Unlock()
		s.logger.Warn("job still running, skipping tick", logging.WithField("job", name))
		return
	}
	state.running = true
	run := state.run
	s.mu.Unlock()

	started := time.Now()
	err := run(ctx)
	elapsed := time.Since(started)

	s.mu.Lock()
	state.running = false
	state.lastRun = &started
	if err != nil {
		state.lastErr = err.Error()
	} else {
		state.lastErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("job failed",
			logging.WithField("job", name),
			logging.WithField("duration", elapsed.String()),
			logging.WithField("error", err.Error()))
		return
	}
	s.logger.Info("job finished",
		logging.WithField("job", name),
		logging.WithField("duration", elapsed.String()))
}
