package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"theme-tracker/internal/monitoring"
)

// Agent is a unit of scheduled work. RunOnce returns a human-readable summary
// of what the run accomplished.
type Agent interface {
	Name() string
	Initialize() error
	RunOnce(ctx context.Context) (string, error)
}

// Scheduler re-runs an agent on a cron schedule, feeding outcomes into the
// shared monitor.
type Scheduler struct {
	schedule string
	agent    Agent
	monitor  *monitoring.Monitor
	cron     *cron.Cron
}

func New(schedule string, agent Agent, monitor *monitoring.Monitor) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		agent:    agent,
		monitor:  monitor,
		// Prevent overlapping runs
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start blocks until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.agent.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			log.Printf("Error running scheduled job for %s: %v", s.agent.Name(), err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	log.Printf("Scheduler started for %s with schedule: %s", s.agent.Name(), s.schedule)
	s.cron.Start()

	<-ctx.Done()
	log.Printf("Scheduler stopped for %s", s.agent.Name())
	s.cron.Stop()
	return ctx.Err()
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	agentName := s.agent.Name()

	log.Printf("Starting %s run...", agentName)

	summary, err := s.agent.RunOnce(ctx)
	duration := time.Since(startTime)
	if err != nil {
		if summary != "" {
			// Some windows still succeeded; keep the service healthy.
			s.monitor.RecordPartialFailure(fmt.Errorf("%s: %w", agentName, err), duration)
			return nil
		}
		s.monitor.RecordCriticalFailure(fmt.Errorf("%s failed: %w", agentName, err), duration)
		return fmt.Errorf("%s run failed: %w", agentName, err)
	}

	s.monitor.RecordSuccess(summary, duration)
	return nil
}
