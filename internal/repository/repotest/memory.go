// Package repotest provides an in-memory repository.Store for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/repository"
)

// Faults lets tests inject storage failures.
type Faults struct {
	mu sync.Mutex
	// CreateNotification is called before a notification is stored; a
	// non-nil error aborts the write.
	CreateNotification func(n *domain.Notification) error
	// ListOverdue replaces the overdue query result error.
	ListOverdue error
}

func (f *Faults) createNotification(n *domain.Notification) error {
	f.mu.Lock()
	hook := f.CreateNotification
	f.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(n)
}

// SetCreateNotification installs the notification write hook.
func (f *Faults) SetCreateNotification(hook func(n *domain.Notification) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateNotification = hook
}

type state struct {
	users         map[string]domain.User
	projects      map[string]domain.Project
	members       map[string]domain.ProjectMember
	questions     map[string]domain.Question
	notifications map[string]domain.Notification
}

func newState() *state {
	return &state{
		users:         make(map[string]domain.User),
		projects:      make(map[string]domain.Project),
		members:       make(map[string]domain.ProjectMember),
		questions:     make(map[string]domain.Question),
		notifications: make(map[string]domain.Notification),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.questions {
		c.questions[k] = v
	}
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	return c
}

// Store is a map-backed repository.Store. Transactions work on a snapshot
// that replaces the committed state when fn succeeds; they are serialized,
// which stands in for row-level locking in Postgres.
type Store struct {
	txMu   *sync.Mutex
	mu     *sync.Mutex
	st     *state
	inTx   bool
	Faults *Faults
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{txMu: &sync.Mutex{}, mu: &sync.Mutex{}, st: newState(), Faults: &Faults{}}
}

func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Projects() repository.ProjectRepository           { return projectRepo{s} }
func (s *Store) Questions() repository.QuestionRepository         { return questionRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	tx := &Store{txMu: &sync.Mutex{}, mu: &sync.Mutex{}, st: snapshot, inTx: true, Faults: s.Faults}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = snapshot
	s.mu.Unlock()
	return nil
}

func (s *Store) nextID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// AddUser seeds a user and returns it.
func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = s.nextID("user")
	}
	if u.Role == "" {
		u.Role = domain.GlobalRoleUser
	}
	s.st.users[u.ID] = u
	return u
}

// AddProject seeds a project without members.
func (s *Store) AddProject(p domain.Project) domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.nextID("project")
	}
	p.Members = nil
	s.st.projects[p.ID] = p
	return p
}

// AddMember seeds a membership row. A second row for the same (project, user)
// replaces the first.
func (s *Store) AddMember(projectID, userID string, role domain.ProjectRole) domain.ProjectMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := projectID + "/" + userID
	m := domain.ProjectMember{ID: s.nextID("member"), ProjectID: projectID, UserID: userID, Role: role, CreatedAt: time.Now()}
	s.st.members[key] = m
	return m
}

// AddQuestion seeds a question.
func (s *Store) AddQuestion(q domain.Question) domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == "" {
		q.ID = s.nextID("question")
	}
	if q.Status == "" {
		q.Status = domain.QuestionStatusNew
	}
	if q.Priority == "" {
		q.Priority = domain.QuestionPriorityMedium
	}
	s.st.questions[q.ID] = q
	return q
}

// Question returns the committed question.
func (s *Store) Question(id string) domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.questions[id]
}

// NotificationsFor returns committed notifications for userID, oldest first.
func (s *Store) NotificationsFor(userID string) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.st.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sortNotifications(out, true)
	return out
}

// NotificationCount returns the number of committed notifications.
func (s *Store) NotificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.notifications)
}

func sortNotifications(ns []domain.Notification, ascending bool) {
	sort.SliceStable(ns, func(i, j int) bool {
		if ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			if ascending {
				return ns[i].ID < ns[j].ID
			}
			return ns[i].ID > ns[j].ID
		}
		if ascending {
			return ns[i].CreatedAt.Before(ns[j].CreatedAt)
		}
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.st.users[id]; ok {
		return &u, nil
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type projectRepo struct{ s *Store }

func (r projectRepo) GetWithMembers(_ context.Context, id string) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	p.Members = nil
	for _, m := range r.s.st.members {
		if m.ProjectID == id {
			p.Members = append(p.Members, m)
		}
	}
	sort.Slice(p.Members, func(i, j int) bool { return p.Members[i].UserID < p.Members[j].UserID })
	return &p, nil
}

type questionRepo struct{ s *Store }

func (r questionRepo) GetByID(_ context.Context, id string) (*domain.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if q, ok := r.s.st.questions[id]; ok {
		return &q, nil
	}
	return nil, pgx.ErrNoRows
}

func (r questionRepo) UpdateStatus(_ context.Context, id string, expected, next domain.QuestionStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.st.questions[id]
	if !ok || q.Status != expected {
		return false, nil
	}
	q.Status = next
	q.UpdatedAt = time.Now()
	r.s.st.questions[id] = q
	return true, nil
}

func (r questionRepo) ListOverdue(_ context.Context, now time.Time) ([]domain.Question, error) {
	if err := r.s.Faults.ListOverdue; err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Question
	for _, q := range r.s.st.questions {
		if isOverdue(q, now) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Deadline.Equal(*out[j].Deadline) {
			return out[i].ID < out[j].ID
		}
		return out[i].Deadline.Before(*out[j].Deadline)
	})
	return out, nil
}

func (r questionRepo) MarkDeadlineNotified(_ context.Context, id string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.st.questions[id]
	if !ok || !isOverdue(q, now) {
		return false, nil
	}
	q.IsDeadlineNotified = true
	q.UpdatedAt = time.Now()
	r.s.st.questions[id] = q
	return true, nil
}

// isOverdue mirrors the SQL predicate shared by ListOverdue and
// MarkDeadlineNotified.
func isOverdue(q domain.Question, now time.Time) bool {
	switch q.Status {
	case domain.QuestionStatusNew, domain.QuestionStatusInProgress:
	case domain.QuestionStatusPendingApproval, domain.QuestionStatusClosed:
		return false
	default:
		return false
	}
	return q.Deadline != nil && q.Deadline.Before(now) && !q.IsDeadlineNotified
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if err := r.s.Faults.createNotification(n); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.nextID("notification")
	n.IsRead = false
	n.CreatedAt = time.Now()
	r.s.st.notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n, ok := r.s.st.notifications[id]; ok {
		return &n, nil
	}
	return nil, pgx.ErrNoRows
}

func (r notificationRepo) List(_ context.Context, filter repository.NotificationFilter) ([]domain.Notification, error) {
	r.s.mu.Lock()
	var out []domain.Notification
	for _, n := range r.s.st.notifications {
		if n.UserID != filter.UserID {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	r.s.mu.Unlock()

	sortNotifications(out, false)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r notificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, n := range r.s.st.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r notificationRepo) MarkRead(_ context.Context, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.st.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.IsRead = true
	r.s.st.notifications[id] = n
	return true, nil
}

func (r notificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed int64
	for id, n := range r.s.st.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.s.st.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}
