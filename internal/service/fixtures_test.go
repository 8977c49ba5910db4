package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/is0060hf/qa-web-system-sub002/internal/domain"
	"github.com/is0060hf/qa-web-system-sub002/internal/events"
	"github.com/is0060hf/qa-web-system-sub002/internal/repository/repotest"
	apperrors "github.com/is0060hf/qa-web-system-sub002/pkg/util/errorutil"
)

// fixture is a project with one user per role plus a question between
// creator and assignee.
type fixture struct {
	store      *repotest.Store
	dispatcher events.Dispatcher
	recorder   *eventRecorder

	admin    domain.User
	owner    domain.User
	manager  domain.User
	member   domain.User
	creator  domain.User
	assignee domain.User
	outsider domain.User

	project  domain.Project
	question domain.Question
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	f := &fixture{
		store:      store,
		dispatcher: events.NewInMemoryDispatcher(),
		recorder:   &eventRecorder{},
	}
	f.recorder.subscribe(f.dispatcher)

	f.admin = store.AddUser(domain.User{ID: "u-admin", Email: "admin@example.com", Role: domain.GlobalRoleAdmin})
	f.owner = store.AddUser(domain.User{ID: "u-owner", Email: "owner@example.com"})
	f.manager = store.AddUser(domain.User{ID: "u-manager", Email: "manager@example.com"})
	f.member = store.AddUser(domain.User{ID: "u-member", Email: "member@example.com"})
	f.creator = store.AddUser(domain.User{ID: "u-creator", Email: "creator@example.com"})
	f.assignee = store.AddUser(domain.User{ID: "u-assignee", Email: "assignee@example.com"})
	f.outsider = store.AddUser(domain.User{ID: "u-outsider", Email: "outsider@example.com"})

	f.project = store.AddProject(domain.Project{ID: "p-1", Name: "Platform", CreatorID: f.owner.ID})
	store.AddMember(f.project.ID, f.manager.ID, domain.ProjectRoleManager)
	store.AddMember(f.project.ID, f.member.ID, domain.ProjectRoleMember)
	store.AddMember(f.project.ID, f.creator.ID, domain.ProjectRoleMember)
	store.AddMember(f.project.ID, f.assignee.ID, domain.ProjectRoleMember)

	f.question = store.AddQuestion(domain.Question{
		ID:         "q-1",
		ProjectID:  f.project.ID,
		Title:      "Where is the staging config?",
		CreatorID:  f.creator.ID,
		AssigneeID: f.assignee.ID,
	})
	return f
}

func (f *fixture) notifications() *NotificationService {
	return NewNotificationService(f.store, f.dispatcher, zap.NewNop())
}

func (f *fixture) questions() *QuestionService {
	return NewQuestionService(QuestionDependencies{
		Store:         f.store,
		Notifications: f.notifications(),
		Dispatcher:    f.dispatcher,
		Logger:        zap.NewNop(),
	})
}

func (f *fixture) scanner(now time.Time, concurrency int) *DeadlineService {
	return NewDeadlineService(DeadlineDependencies{
		Store:         f.store,
		Notifications: f.notifications(),
		Logger:        zap.NewNop(),
		Concurrency:   concurrency,
		Clock:         func() time.Time { return now },
	})
}

func (f *fixture) withStatus(status domain.QuestionStatus) {
	q := f.store.Question(f.question.ID)
	q.Status = status
	f.question = f.store.AddQuestion(q)
}

func identityOf(u domain.User) *domain.Identity {
	return u.Identity()
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) subscribe(d events.Dispatcher) {
	handler := func(_ context.Context, e events.Event) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
		return nil
	}
	d.Subscribe(events.EventQuestionStatusChanged, handler)
	d.Subscribe(events.EventNotificationCreated, handler)
}

func (r *eventRecorder) count(eventType events.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("expected code %s, got %s (%v)", code, got, err)
	}
}
