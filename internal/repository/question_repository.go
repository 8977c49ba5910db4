package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
)

// QuestionRepository encapsulates question persistence used by the state
// machine and the deadline scanner.
type QuestionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Question, error)
	// UpdateStatus moves the question to next only while it still holds
	// expected. It reports whether a row was changed.
	UpdateStatus(ctx context.Context, id string, expected, next domain.QuestionStatus) (bool, error)
	// ListOverdue returns NEW or IN_PROGRESS questions with a deadline before
	// now that have not been deadline-notified yet.
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Question, error)
	// MarkDeadlineNotified sets is_deadline_notified only while the question
	// still matches the ListOverdue selection at now. It reports whether this
	// call claimed the question.
	MarkDeadlineNotified(ctx context.Context, id string, now time.Time) (bool, error)
}

// overduePredicate selects questions owed a deadline notification.
// $1 and $2 are the open statuses, $3 is now.
const overduePredicate = `status IN ($1, $2)
          AND deadline IS NOT NULL
          AND deadline < $3
          AND is_deadline_notified = FALSE`

const (
	listOverdueQuery = `SELECT ` + questionColumns + `
        FROM questions
        WHERE ` + overduePredicate + `
        ORDER BY deadline ASC, id ASC`

	claimDeadlineQuery = `
        UPDATE questions SET is_deadline_notified=TRUE, updated_at=NOW()
        WHERE ` + overduePredicate + `
          AND id=$4`
)

type questionRepository struct {
	db DBTX
}

const questionColumns = `id, project_id, title, content, creator_id, assignee_id, status, priority,
               deadline, is_deadline_notified, created_at, updated_at`

func (r *questionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	row := r.db.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id)
	question, err := scanQuestion(row)
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (r *questionRepository) UpdateStatus(ctx context.Context, id string, expected, next domain.QuestionStatus) (bool, error) {
	const query = `
        UPDATE questions SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status=$3`
	cmd, err := r.db.Exec(ctx, query, next, id, expected)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *questionRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Question, error) {
	rows, err := r.db.Query(ctx, listOverdueQuery, domain.QuestionStatusNew, domain.QuestionStatusInProgress, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *question)
	}
	return result, rows.Err()
}

func (r *questionRepository) MarkDeadlineNotified(ctx context.Context, id string, now time.Time) (bool, error) {
	cmd, err := r.db.Exec(ctx, claimDeadlineQuery, domain.QuestionStatusNew, domain.QuestionStatusInProgress, now, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var question domain.Question
	if err := row.Scan(
		&question.ID,
		&question.ProjectID,
		&question.Title,
		&question.Content,
		&question.CreatorID,
		&question.AssigneeID,
		&question.Status,
		&question.Priority,
		&question.Deadline,
		&question.IsDeadlineNotified,
		&question.CreatedAt,
		&question.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &question, nil
}
