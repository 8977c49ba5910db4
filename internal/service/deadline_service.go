package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/observability"
	"github.com/is0060hf/qa-web-system-sub002/internal/repository"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

// errAlreadyNotified marks a question whose claim matched no row.
var errAlreadyNotified = errors.New("question no longer owed a deadline notification")

// ScanResult summarizes one scanner run. QuestionIDs lists processed
// questions only, in deadline order.
type ScanResult struct {
	ProcessedCount int
	QuestionIDs    []string
	SkippedCount   int
	FailedCount    int
}

// DeadlineService notifies assignees and creators of overdue questions.
type DeadlineService struct {
	store         repository.Store
	notifications *NotificationService
	logger        *zap.Logger
	metrics       *observability.Metrics
	concurrency   int
	now           func() time.Time
}

// DeadlineDependencies bundles collaborators for the scanner.
type DeadlineDependencies struct {
	Store         repository.Store
	Notifications *NotificationService
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	// Concurrency bounds how many questions are processed at once; values
	// below one mean sequential.
	Concurrency int
	Clock       func() time.Time
}

// NewDeadlineService constructs the scanner.
func NewDeadlineService(deps DeadlineDependencies) *DeadlineService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &DeadlineService{
		store:         deps.Store,
		notifications: deps.Notifications,
		logger:        logger,
		metrics:       deps.Metrics,
		concurrency:   concurrency,
		now:           clock,
	}
}

type scanOutcome struct {
	processed     bool
	skipped       bool
	notifications []domain.Notification
}

// Scan processes every overdue, not yet notified question in its own
// transaction. A failing question is rolled back and counted; the batch
// goes on.
func (s *DeadlineService) Scan(ctx context.Context) (*ScanResult, error) {
	startedAt := s.now()
	overdue, err := s.store.Questions().ListOverdue(ctx, startedAt)
	if err != nil {
		runErr := apperrors.NewStorageError(err)
		s.metrics.RecordScan(0, 0, 0, runErr)
		s.logger.Error("deadline scan query failed", zap.Error(err))
		return nil, runErr
	}

	outcomes := make([]scanOutcome, len(overdue))
	failures := make([]error, len(overdue))

	var group errgroup.Group
	group.SetLimit(s.concurrency)
	for i := range overdue {
		i := i
		question := overdue[i]
		group.Go(func() error {
			outcome, err := s.processQuestion(ctx, question, startedAt)
			switch {
			case err == nil:
				outcomes[i] = outcome
			case errors.Is(err, errAlreadyNotified):
				outcomes[i] = scanOutcome{skipped: true}
				s.logger.Debug("deadline notification skipped", zap.String("question_id", question.ID))
			default:
				failures[i] = err
				s.logger.Warn("deadline notification failed",
					zap.String("question_id", question.ID),
					zap.Error(err))
			}
			// Per-question failures never cancel siblings.
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		runErr := apperrors.NewInternalError(err)
		s.metrics.RecordScan(0, 0, 0, runErr)
		return nil, runErr
	}

	result := &ScanResult{QuestionIDs: []string{}}
	var created []domain.Notification
	for i, outcome := range outcomes {
		switch {
		case failures[i] != nil:
			result.FailedCount++
		case outcome.skipped:
			result.SkippedCount++
		case outcome.processed:
			result.ProcessedCount++
			result.QuestionIDs = append(result.QuestionIDs, overdue[i].ID)
			created = append(created, outcome.notifications...)
		}
	}

	s.notifications.Announce(ctx, created)
	s.metrics.RecordScan(result.ProcessedCount, result.SkippedCount, result.FailedCount, nil)
	s.logger.Info("deadline scan finished",
		zap.Int("candidates", len(overdue)),
		zap.Int("processed", result.ProcessedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", result.FailedCount),
		zap.Duration("elapsed", s.now().Sub(startedAt)))
	return result, nil
}

// processQuestion claims the question and emits both notifications in one
// transaction. The claim re-applies the overdue selection at now, so a
// question another run already flagged, or one that left NEW/IN_PROGRESS
// since the query, makes this return errAlreadyNotified.
func (s *DeadlineService) processQuestion(ctx context.Context, question domain.Question, now time.Time) (scanOutcome, error) {
	var outcome scanOutcome
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		claimed, err := tx.Questions().MarkDeadlineNotified(ctx, question.ID, now)
		if err != nil {
			return apperrors.NewStorageError(err)
		}
		if !claimed {
			return errAlreadyNotified
		}

		inputs := []EmitInput{
			{
				RecipientID: question.AssigneeID,
				Type:        domain.NotificationAssigneeDeadlineExceeded,
				Message:     fmt.Sprintf("The deadline for question %q you are assigned to has passed", question.Title),
				RelatedID:   question.ID,
			},
			{
				RecipientID: question.CreatorID,
				Type:        domain.NotificationRequesterDeadlineExceeded,
				Message:     fmt.Sprintf("The deadline for your question %q has passed", question.Title),
				RelatedID:   question.ID,
			},
		}
		for _, input := range inputs {
			notification, err := s.notifications.Emit(ctx, tx, input)
			if err != nil {
				return err
			}
			outcome.notifications = append(outcome.notifications, *notification)
		}
		outcome.processed = true
		return nil
	})
	if err != nil {
		return scanOutcome{}, err
	}
	return outcome, nil
}
