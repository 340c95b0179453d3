package audit

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultPruneSchedule = "@hourly"

// Prunable is a store that can drop entries older than a cutoff.
type Prunable interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner deletes audit entries older than the retention window on a cron
// schedule.
type Pruner struct {
	target    Prunable
	retention time.Duration
	schedule  string
	log       *zap.Logger
	now       func() time.Time

	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

func NewPruner(target Prunable, retention time.Duration, schedule string, log *zap.Logger) *Pruner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pruner{
		target:    target,
		retention: retention,
		schedule:  schedule,
		log:       log,
		now:       time.Now,
	}
}

// Start schedules RunOnce. An invalid schedule falls back to hourly.
func (p *Pruner) Start(ctx context.Context) {
	p.runCtx, p.cancel = context.WithCancel(ctx)

	c := cron.New()
	if _, err := c.AddFunc(p.schedule, func() { p.RunOnce(p.runCtx) }); err != nil {
		p.log.Warn("audit.pruner: invalid schedule, falling back to "+defaultPruneSchedule,
			zap.String("schedule", p.schedule), zap.Error(err))
		c = cron.New()
		_, _ = c.AddFunc(defaultPruneSchedule, func() { p.RunOnce(p.runCtx) })
	}
	c.Start()
	p.cron = c
}

// Stop cancels in-flight runs and waits for them to return.
func (p *Pruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.cron != nil {
		<-p.cron.Stop().Done()
	}
}

// RunOnce prunes everything older than now minus the retention window.
func (p *Pruner) RunOnce(ctx context.Context) (int64, error) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := p.now()
	cutoff := start.Add(-p.retention)
	n, err := p.target.Prune(runCtx, cutoff)
	if err != nil {
		p.log.Error("audit.pruner: prune failed", zap.Error(err))
		return 0, err
	}
	p.log.Info("audit.pruner: prune complete",
		zap.Int64("deleted", n),
		zap.Time("cutoff", cutoff),
		zap.Duration("took", time.Since(start)),
	)
	return n, nil
}
