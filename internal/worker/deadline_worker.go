package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/is0060hf/qa-web-system-sub002/internal/service"
)

// Scanner runs one deadline scan.
type Scanner interface {
	Scan(ctx context.Context) (*service.ScanResult, error)
}

// DeadlineScheduler triggers the deadline scanner on a cron schedule. It is
// an in-process alternative to calling the guarded HTTP entry point.
type DeadlineScheduler struct {
	cronEngine *cron.Cron
	scanner    Scanner
	logger     *zap.Logger
	spec       string
	timeout    time.Duration
}

// NewDeadlineScheduler builds a scheduler; spec uses the standard five-field
// cron syntax and runs in UTC.
func NewDeadlineScheduler(scanner Scanner, logger *zap.Logger, spec string, timeout time.Duration) *DeadlineScheduler {
	return &DeadlineScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		scanner: scanner,
		logger:  logger,
		spec:    spec,
		timeout: timeout,
	}
}

// Start registers the job and starts the cron engine.
func (s *DeadlineScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.spec, s.RunOnce); err != nil {
		return err
	}
	s.cronEngine.Start()
	s.logger.Info("deadline scheduler started", zap.String("spec", s.spec))
	return nil
}

// RunOnce performs a single bounded scan and logs its outcome.
func (s *DeadlineScheduler) RunOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.scanner.Scan(ctx)
	if err != nil {
		s.logger.Error("scheduled deadline scan failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled deadline scan completed",
		zap.Int("processed", result.ProcessedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", result.FailedCount))
}

// Stop stops scheduling and waits for a running scan to finish.
func (s *DeadlineScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("deadline scheduler stopped")
}
