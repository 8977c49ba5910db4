package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/events"
	"github.com/is0060hf/qa-web-system-sub002/internal/repository"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

// QuestionService applies status transitions to questions.
type QuestionService struct {
	store         repository.Store
	notifications *NotificationService
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// QuestionDependencies bundles collaborators for the question service.
type QuestionDependencies struct {
	Store         repository.Store
	Notifications *NotificationService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewQuestionService constructs the service.
func NewQuestionService(deps QuestionDependencies) *QuestionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionService{
		store:         deps.Store,
		notifications: deps.Notifications,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
	}
}

// AllowedNextStatuses returns the statuses reachable from current.
func AllowedNextStatuses(current domain.QuestionStatus) []domain.QuestionStatus {
	switch current {
	case domain.QuestionStatusNew:
		return []domain.QuestionStatus{domain.QuestionStatusInProgress}
	case domain.QuestionStatusInProgress:
		return []domain.QuestionStatus{domain.QuestionStatusPendingApproval}
	case domain.QuestionStatusPendingApproval:
		return []domain.QuestionStatus{domain.QuestionStatusClosed, domain.QuestionStatusInProgress}
	case domain.QuestionStatusClosed:
		return []domain.QuestionStatus{domain.QuestionStatusInProgress}
	default:
		return nil
	}
}

// CanTransition reports whether current -> next is in the transition table.
// Same-state requests are never allowed.
func CanTransition(current, next domain.QuestionStatus) bool {
	for _, allowed := range AllowedNextStatuses(current) {
		if allowed == next {
			return true
		}
	}
	return false
}

// ChangeStatus moves a question to requested. The status update and the
// notification sent on CLOSED commit together.
func (s *QuestionService) ChangeStatus(ctx context.Context, identity *domain.Identity, questionID string, requested domain.QuestionStatus) (*domain.Question, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	if !requested.Valid() {
		return nil, apperrors.NewValidationError("unknown question status", map[string]any{"status": string(requested)})
	}

	var (
		updated  *domain.Question
		previous domain.QuestionStatus
		created  []domain.Notification
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		question, err := tx.Questions().GetByID(ctx, questionID)
		if err != nil {
			return apperrors.StorageOrNotFound(err, "question", map[string]any{"question_id": questionID})
		}
		project, err := tx.Projects().GetWithMembers(ctx, question.ProjectID)
		if err != nil {
			return apperrors.StorageOrNotFound(err, "project", map[string]any{"project_id": question.ProjectID})
		}
		if !canChangeStatus(question, project, identity) {
			return apperrors.NewForbidden("not allowed to change the status of this question")
		}
		if !CanTransition(question.Status, requested) {
			return apperrors.NewInvalidTransition(string(question.Status), string(requested))
		}

		changed, err := tx.Questions().UpdateStatus(ctx, question.ID, question.Status, requested)
		if err != nil {
			return apperrors.NewStorageError(err)
		}
		if !changed {
			// Another writer moved the question after it was read.
			return apperrors.NewInvalidTransition(string(question.Status), string(requested))
		}

		previous = question.Status
		question.Status = requested
		updated = question

		if requested == domain.QuestionStatusClosed {
			notification, err := s.notifications.Emit(ctx, tx, EmitInput{
				RecipientID: question.CreatorID,
				Type:        domain.NotificationQuestionClosed,
				Message:     fmt.Sprintf("Question %q has been closed", question.Title),
				RelatedID:   question.ID,
			})
			if err != nil {
				return err
			}
			created = append(created, *notification)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.AsStorageError(err)
	}

	s.logger.Info("question status changed",
		zap.String("question_id", updated.ID),
		zap.String("actor_id", identity.ID),
		zap.Bool("admin", identity.IsAdmin()),
		zap.String("from", string(previous)),
		zap.String("to", string(updated.Status)))

	s.publishStatusChanged(ctx, identity.ID, updated, previous)
	s.notifications.Announce(ctx, created)
	return updated, nil
}

func (s *QuestionService) publishStatusChanged(ctx context.Context, actorID string, question *domain.Question, previous domain.QuestionStatus) {
	if s.dispatcher == nil {
		return
	}
	actor := actorID
	event := newEvent(events.EventQuestionStatusChanged, question.ID, &actor, events.QuestionStatusChangedPayload{
		ProjectID: question.ProjectID,
		OldStatus: previous,
		NewStatus: question.Status,
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("status change event failed", zap.String("question_id", question.ID), zap.Error(err))
	}
}

// canChangeStatus allows the creator, the assignee, project managers
// (including the project creator) and global admins.
func canChangeStatus(question *domain.Question, project *domain.Project, identity *domain.Identity) bool {
	switch identity.Role {
	case domain.GlobalRoleAdmin:
		return true
	case domain.GlobalRoleUser:
	default:
		return false
	}
	if question.CreatorID == identity.ID || (question.AssigneeID != "" && question.AssigneeID == identity.ID) {
		return true
	}
	switch ResolveAccessLevel(project, identity) {
	case domain.AccessManager, domain.AccessAdmin:
		return true
	case domain.AccessMember, domain.AccessNone:
		return false
	default:
		return false
	}
}
