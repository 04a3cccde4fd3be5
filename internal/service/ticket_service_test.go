package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

type ticketFixture struct {
	users    *fakeUserRepo
	tickets  *fakeTicketRepo
	comments *fakeCommentRepo
	svc      *TicketService
}

func newTicketFixture() *ticketFixture {
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo(users)
	comments := newFakeCommentRepo(users)
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		CommentRepo: comments,
	})
	return &ticketFixture{users: users, tickets: tickets, comments: comments, svc: svc}
}

func (f *ticketFixture) addUser(t *testing.T, username string, role domain.Role) *auth.Principal {
	t.Helper()
	user := &domain.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, f.users.Create(context.Background(), user))
	return &auth.Principal{User: user}
}

func TestCreateTicketDefaults(t *testing.T) {
	f := newTicketFixture()
	owner := f.addUser(t, "alice", domain.RoleUser)

	ticket, err := f.svc.CreateTicket(context.Background(), owner.User.ID, "  Login broken  ", "Cannot log in")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "Login broken", ticket.Title)
	assert.Equal(t, owner.User.ID, ticket.OwnerID)

	_, comments, err := f.svc.GetTicket(context.Background(), ticket.ID, owner)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newTicketFixture()
	owner := f.addUser(t, "alice", domain.RoleUser)

	for _, tc := range []struct{ title, description string }{
		{"", "desc"},
		{"title", ""},
		{"   ", "desc"},
		{"title", "   "},
	} {
		_, err := f.svc.CreateTicket(context.Background(), owner.User.ID, tc.title, tc.description)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
	}
}

func TestListTicketsNewestFirst(t *testing.T) {
	f := newTicketFixture()
	owner := f.addUser(t, "alice", domain.RoleUser)
	other := f.addUser(t, "bob", domain.RoleUser)

	first, err := f.svc.CreateTicket(context.Background(), owner.User.ID, "first", "d")
	require.NoError(t, err)
	second, err := f.svc.CreateTicket(context.Background(), owner.User.ID, "second", "d")
	require.NoError(t, err)
	_, err = f.svc.CreateTicket(context.Background(), other.User.ID, "not mine", "d")
	require.NoError(t, err)

	list, err := f.svc.ListTickets(context.Background(), owner.User.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestListAllTicketsResolvesOwnerUsernames(t *testing.T) {
	f := newTicketFixture()
	alice := f.addUser(t, "alice", domain.RoleUser)
	bob := f.addUser(t, "bob", domain.RoleUser)

	_, err := f.svc.CreateTicket(context.Background(), alice.User.ID, "a", "d")
	require.NoError(t, err)
	_, err = f.svc.CreateTicket(context.Background(), bob.User.ID, "b", "d")
	require.NoError(t, err)

	list, err := f.svc.ListAllTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].OwnerUsername)
	assert.Equal(t, "alice", list[1].OwnerUsername)
}

func TestGetTicketOwnershipMasking(t *testing.T) {
	f := newTicketFixture()
	owner := f.addUser(t, "alice", domain.RoleUser)
	stranger := f.addUser(t, "mallory", domain.RoleUser)
	admin := f.addUser(t, "root", domain.RoleAdmin)

	ticket, err := f.svc.CreateTicket(context.Background(), owner.User.ID, "t", "d")
	require.NoError(t, err)

	// A non-owner non-admin gets NOT_FOUND, not FORBIDDEN.
	_, _, err = f.svc.GetTicket(context.Background(), ticket.ID, stranger)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	_, _, err = f.svc.GetTicket(context.Background(), ticket.ID, admin)
	assert.NoError(t, err)

	_, _, err = f.svc.GetTicket(context.Background(), uuid.NewString(), owner)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestDeleteTicketOwnerOnly(t *testing.T) {
	f := newTicketFixture()
	owner := f.addUser(t, "alice", domain.RoleUser)
	stranger := f.addUser(t, "mallory", domain.RoleUser)
	admin := f.addUser(t, "root", domain.RoleAdmin)

	ticket, err := f.svc.CreateTicket(context.Background(), owner.User.ID, "t", "d")
	require.NoError(t, err)

	err = f.svc.DeleteTicket(context.Background(), ticket.ID, stranger)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	// Admins may change status but may not delete others' tickets.
	err = f.svc.DeleteTicket(context.Background(), ticket.ID, admin)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	require.NoError(t, f.svc.DeleteTicket(context.Background(), ticket.ID, owner))

	_, _, err = f.svc.GetTicket(context.Background(), ticket.ID, owner)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestAddCommentTrimsAndValidates(t *testing.T) {
	f := newTicketFixture()
	owner := f.addUser(t, "alice", domain.RoleUser)

	ticket, err := f.svc.CreateTicket(context.Background(), owner.User.ID, "t", "d")
	require.NoError(t, err)

	_, err = f.svc.AddComment(context.Background(), ticket.ID, owner, "   ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	comment, err := f.svc.AddComment(context.Background(), ticket.ID, owner, "  hi ")
	require.NoError(t, err)
	assert.Equal(t, "hi", comment.Text)
	assert.Equal(t, owner.User.ID, comment.AuthorID)
	assert.Equal(t, "alice", comment.AuthorUsername)
}

func TestAddCommentOwnerOnly(t *testing.T) {
	f := newTicketFixture()
	owner := f.addUser(t, "alice", domain.RoleUser)
	admin := f.addUser(t, "root", domain.RoleAdmin)

	ticket, err := f.svc.CreateTicket(context.Background(), owner.User.ID, "t", "d")
	require.NoError(t, err)

	_, err = f.svc.AddComment(context.Background(), ticket.ID, admin, "hello")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestConcurrentCommentsAllSurvive(t *testing.T) {
	f := newTicketFixture()
	owner := f.addUser(t, "alice", domain.RoleUser)

	ticket, err := f.svc.CreateTicket(context.Background(), owner.User.ID, "t", "d")
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.AddComment(context.Background(), ticket.ID, owner, "concurrent")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, comments, err := f.svc.GetTicket(context.Background(), ticket.ID, owner)
	require.NoError(t, err)
	require.Len(t, comments, writers)
	for i := 1; i < len(comments); i++ {
		// Thread order matches the order the store accepted the writes.
		assert.Greater(t, comments[i].ID, comments[i-1].ID)
	}
}

func TestUpdateStatusRules(t *testing.T) {
	f := newTicketFixture()
	owner := f.addUser(t, "alice", domain.RoleUser)
	stranger := f.addUser(t, "mallory", domain.RoleUser)
	admin := f.addUser(t, "root", domain.RoleAdmin)

	ticket, err := f.svc.CreateTicket(context.Background(), owner.User.ID, "t", "d")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), ticket.ID, owner, "Escalated")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = f.svc.UpdateStatus(context.Background(), ticket.ID, stranger, "Resolved")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	status, err := f.svc.UpdateStatus(context.Background(), ticket.ID, admin, "Resolved")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, status)

	// No transition graph: closed tickets can reopen.
	status, err = f.svc.UpdateStatus(context.Background(), ticket.ID, owner, "Closed")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, status)
	status, err = f.svc.UpdateStatus(context.Background(), ticket.ID, owner, "Open")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, status)
}

func TestTicketLifecycleScenario(t *testing.T) {
	f := newTicketFixture()
	userA := f.addUser(t, "usera", domain.RoleUser)
	admin := f.addUser(t, "root", domain.RoleAdmin)

	ticket, err := f.svc.CreateTicket(context.Background(), userA.User.ID, "Login broken", "Cannot log in")
	require.NoError(t, err)

	list, err := f.svc.ListTickets(context.Background(), userA.User.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ticket.ID, list[0].ID)
	assert.Equal(t, domain.TicketStatusOpen, list[0].Status)

	status, err := f.svc.UpdateStatus(context.Background(), ticket.ID, admin, "Resolved")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, status)

	got, _, err := f.svc.GetTicket(context.Background(), ticket.ID, userA)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, got.Status)

	require.NoError(t, f.svc.DeleteTicket(context.Background(), ticket.ID, userA))

	_, _, err = f.svc.GetTicket(context.Background(), ticket.ID, userA)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
