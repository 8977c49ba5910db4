package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
)

// ProjectRepository reads projects together with their membership rows.
type ProjectRepository interface {
	GetWithMembers(ctx context.Context, id string) (*domain.Project, error)
}

type projectRepository struct {
	db DBTX
}

// GetWithMembers loads the project and its members in one query. It returns
// pgx.ErrNoRows when the project does not exist.
func (r *projectRepository) GetWithMembers(ctx context.Context, id string) (*domain.Project, error) {
	const query = `
        SELECT p.id, p.name, p.description, p.creator_id, p.created_at, p.updated_at,
               m.id, m.user_id, m.role, m.created_at
        FROM projects p
        LEFT JOIN project_members m ON m.project_id = p.id
        WHERE p.id=$1
        ORDER BY m.created_at ASC`
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var project *domain.Project
	for rows.Next() {
		var (
			p         domain.Project
			memberID  *string
			userID    *string
			role      *domain.ProjectRole
			createdAt *time.Time
		)
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.CreatorID,
			&p.CreatedAt,
			&p.UpdatedAt,
			&memberID,
			&userID,
			&role,
			&createdAt,
		); err != nil {
			return nil, err
		}
		if project == nil {
			project = &p
		}
		if memberID != nil {
			project.Members = append(project.Members, domain.ProjectMember{
				ID:        *memberID,
				ProjectID: project.ID,
				UserID:    *userID,
				Role:      *role,
				CreatedAt: derefTime(createdAt),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if project == nil {
		return nil, pgx.ErrNoRows
	}
	return project, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
