package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"DesignStats/internal/ports"
)

// CronScheduler drives recurring jobs from a cron expression.
type CronScheduler struct {
	spec   string
	engine *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
func NewCronScheduler(spec string) *CronScheduler {
	return &CronScheduler{spec: spec}
}

// Start registers the job under the configured expression and starts the
// engine. Calling Start twice is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if c.engine != nil {
		return nil
	}

	engine := cron.New()
	if _, err := engine.AddFunc(c.spec, func() { job(time.Now()) }); err != nil {
		return fmt.Errorf("register job %q: %w", c.spec, err)
	}

	engine.Start()
	c.engine = engine

	go func() {
		<-ctx.Done()
		engine.Stop()
	}()

	return nil
}

// Stop halts the engine and waits for a running job to finish, bounded by ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if c.engine == nil {
		return nil
	}

	stopped := c.engine.Stop()
	c.engine = nil

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
