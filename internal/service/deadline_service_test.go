package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/observability"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

var scanNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func (f *fixture) addOverdue(id string, status domain.QuestionStatus, deadline *time.Time) domain.Question {
	return f.store.AddQuestion(domain.Question{
		ID:         id,
		ProjectID:  f.project.ID,
		Title:      "Question " + id,
		CreatorID:  f.creator.ID,
		AssigneeID: f.assignee.ID,
		Status:     status,
		Deadline:   deadline,
	})
}

func yesterday() *time.Time {
	t := scanNow.Add(-24 * time.Hour)
	return &t
}

func TestDeadlineService_NotifiesOverdueQuestion(t *testing.T) {
	f := newFixture(t)
	f.addOverdue("q-overdue", domain.QuestionStatusNew, yesterday())

	result, err := f.scanner(scanNow, 1).Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProcessedCount != 1 || len(result.QuestionIDs) != 1 || result.QuestionIDs[0] != "q-overdue" {
		t.Fatalf("expected q-overdue processed, got %+v", result)
	}
	if !f.store.Question("q-overdue").IsDeadlineNotified {
		t.Fatalf("flag should be set")
	}

	assigneeNotes := f.store.NotificationsFor(f.assignee.ID)
	creatorNotes := f.store.NotificationsFor(f.creator.ID)
	if len(assigneeNotes) != 1 || assigneeNotes[0].Type != domain.NotificationAssigneeDeadlineExceeded {
		t.Fatalf("expected one assignee notification, got %+v", assigneeNotes)
	}
	if len(creatorNotes) != 1 || creatorNotes[0].Type != domain.NotificationRequesterDeadlineExceeded {
		t.Fatalf("expected one requester notification, got %+v", creatorNotes)
	}
	for _, n := range append(assigneeNotes, creatorNotes...) {
		if n.RelatedID == nil || *n.RelatedID != "q-overdue" {
			t.Fatalf("notification %s should reference q-overdue", n.ID)
		}
	}
}

func TestDeadlineService_SecondScanIsNoop(t *testing.T) {
	f := newFixture(t)
	f.addOverdue("q-overdue", domain.QuestionStatusInProgress, yesterday())
	scanner := f.scanner(scanNow, 1)

	if _, err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	result, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if result.ProcessedCount != 0 || len(result.QuestionIDs) != 0 {
		t.Fatalf("second scan should process nothing, got %+v", result)
	}
	if f.store.NotificationCount() != 2 {
		t.Fatalf("expected exactly one notification pair, got %d", f.store.NotificationCount())
	}
}

func TestDeadlineService_Selection(t *testing.T) {
	f := newFixture(t)
	tomorrow := scanNow.Add(24 * time.Hour)
	exactlyNow := scanNow

	f.addOverdue("q-pending", domain.QuestionStatusPendingApproval, yesterday())
	f.addOverdue("q-closed", domain.QuestionStatusClosed, yesterday())
	f.addOverdue("q-nodeadline", domain.QuestionStatusNew, nil)
	f.addOverdue("q-future", domain.QuestionStatusNew, &tomorrow)
	f.addOverdue("q-now", domain.QuestionStatusNew, &exactlyNow)
	notified := f.addOverdue("q-notified", domain.QuestionStatusNew, yesterday())
	notified.IsDeadlineNotified = true
	f.store.AddQuestion(notified)

	result, err := f.scanner(scanNow, 1).Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProcessedCount != 0 {
		t.Fatalf("nothing should be selected, got %+v", result)
	}
	if f.store.NotificationCount() != 0 {
		t.Fatalf("no notifications expected, got %d", f.store.NotificationCount())
	}
	if f.store.Question("q-pending").IsDeadlineNotified {
		t.Fatalf("PENDING_APPROVAL question must not be flagged")
	}
}

func TestDeadlineService_EmptyIsSuccess(t *testing.T) {
	f := newFixture(t)
	result, err := f.scanner(scanNow, 1).Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProcessedCount != 0 || result.QuestionIDs == nil {
		t.Fatalf("expected empty non-nil result, got %+v", result)
	}
}

func TestDeadlineService_FailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	f.addOverdue("q-a", domain.QuestionStatusNew, yesterday())
	broken := f.addOverdue("q-b", domain.QuestionStatusNew, yesterday())
	f.addOverdue("q-c", domain.QuestionStatusNew, yesterday())

	// Fail the second write for q-b so one notification would already exist
	// inside the transaction.
	f.store.Faults.SetCreateNotification(func(n *domain.Notification) error {
		if n.RelatedID != nil && *n.RelatedID == broken.ID && n.Type == domain.NotificationRequesterDeadlineExceeded {
			return errors.New("constraint violation")
		}
		return nil
	})

	metrics := observability.NewMetrics()
	scanner := f.scanner(scanNow, 1)
	scanner.metrics = metrics

	result, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("batch must not fail: %v", err)
	}
	if result.ProcessedCount != 2 || result.FailedCount != 1 {
		t.Fatalf("expected 2 processed and 1 failed, got %+v", result)
	}
	for _, id := range result.QuestionIDs {
		if id == broken.ID {
			t.Fatalf("failed question must not be reported as processed")
		}
	}
	if f.store.Question(broken.ID).IsDeadlineNotified {
		t.Fatalf("failed question flag must roll back")
	}
	for _, n := range f.store.NotificationsFor(f.assignee.ID) {
		if n.RelatedID != nil && *n.RelatedID == broken.ID {
			t.Fatalf("partial notification for failed question was committed")
		}
	}
	if f.store.NotificationCount() != 4 {
		t.Fatalf("expected 4 notifications, got %d", f.store.NotificationCount())
	}

	snap := metrics.Snapshot()
	if snap.Scan.Runs != 1 || snap.Scan.Processed != 2 || snap.Scan.Failed != 1 {
		t.Fatalf("unexpected scan counters %+v", snap.Scan)
	}

	// The failed question is picked up by the next run once storage recovers.
	f.store.Faults.SetCreateNotification(nil)
	result, err = scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("retry scan: %v", err)
	}
	if result.ProcessedCount != 1 || result.QuestionIDs[0] != broken.ID {
		t.Fatalf("expected retry to process %s, got %+v", broken.ID, result)
	}
}

func TestDeadlineService_QueryFailure(t *testing.T) {
	f := newFixture(t)
	f.store.Faults.ListOverdue = errors.New("connection reset")

	_, err := f.scanner(scanNow, 1).Scan(context.Background())
	assertCode(t, err, apperrors.CodeStorage)
}

func TestDeadlineService_ConcurrentScansNotifyOnce(t *testing.T) {
	f := newFixture(t)
	ids := []string{"q-1a", "q-1b", "q-1c", "q-1d", "q-1e"}
	for _, id := range ids {
		f.addOverdue(id, domain.QuestionStatusNew, yesterday())
	}

	const runs = 4
	results := make([]*ScanResult, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.scanner(scanNow, 3).Scan(context.Background())
			if err != nil {
				t.Errorf("scan %d: %v", i, err)
				return
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	processed := 0
	for _, r := range results {
		if r != nil {
			processed += r.ProcessedCount
		}
	}
	if processed != len(ids) {
		t.Fatalf("expected %d processed across runs, got %d", len(ids), processed)
	}
	if f.store.NotificationCount() != 2*len(ids) {
		t.Fatalf("expected %d notifications, got %d", 2*len(ids), f.store.NotificationCount())
	}
}

func TestDeadlineService_ClaimLostIsSkipped(t *testing.T) {
	f := newFixture(t)
	q := f.addOverdue("q-race", domain.QuestionStatusNew, yesterday())
	scanner := f.scanner(scanNow, 1)

	// Another run claims the question between the query and the transaction.
	outcome, err := scanner.processQuestion(context.Background(), q, scanNow)
	if err != nil || !outcome.processed {
		t.Fatalf("first claim should succeed: %v", err)
	}
	_, err = scanner.processQuestion(context.Background(), q, scanNow)
	if !errors.Is(err, errAlreadyNotified) {
		t.Fatalf("expected errAlreadyNotified, got %v", err)
	}
	if f.store.NotificationCount() != 2 {
		t.Fatalf("losing claim must not emit, got %d notifications", f.store.NotificationCount())
	}
}

func TestDeadlineService_ClaimRechecksStatus(t *testing.T) {
	for _, moved := range []domain.QuestionStatus{domain.QuestionStatusPendingApproval, domain.QuestionStatusClosed} {
		t.Run(string(moved), func(t *testing.T) {
			f := newFixture(t)
			// Snapshot as the overdue query saw it.
			seen := f.addOverdue("q-moved", domain.QuestionStatusInProgress, yesterday())

			current := f.store.Question(seen.ID)
			current.Status = moved
			f.store.AddQuestion(current)

			outcome, err := f.scanner(scanNow, 1).processQuestion(context.Background(), seen, scanNow)
			if !errors.Is(err, errAlreadyNotified) {
				t.Fatalf("expected claim to be refused, got processed=%v err=%v", outcome.processed, err)
			}
			stored := f.store.Question(seen.ID)
			if stored.IsDeadlineNotified {
				t.Fatalf("flag must stay false for a %s question", moved)
			}
			if stored.Status != moved {
				t.Fatalf("status changed to %s", stored.Status)
			}
			if f.store.NotificationCount() != 0 {
				t.Fatalf("expected no notifications, got %d", f.store.NotificationCount())
			}
		})
	}
}

func TestDeadlineService_ClaimRechecksDeadline(t *testing.T) {
	f := newFixture(t)
	seen := f.addOverdue("q-extended", domain.QuestionStatusNew, yesterday())

	extended := scanNow.Add(48 * time.Hour)
	current := f.store.Question(seen.ID)
	current.Deadline = &extended
	f.store.AddQuestion(current)

	_, err := f.scanner(scanNow, 1).processQuestion(context.Background(), seen, scanNow)
	if !errors.Is(err, errAlreadyNotified) {
		t.Fatalf("expected claim to be refused, got %v", err)
	}
	if f.store.NotificationCount() != 0 {
		t.Fatalf("expected no notifications, got %d", f.store.NotificationCount())
	}
}
