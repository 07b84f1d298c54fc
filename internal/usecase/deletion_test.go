package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/questlog/questd/internal/domain"
)

// --- mocks ---

type mockAccounts struct {
	accounts map[string]domain.Account
	deleted  []string
}

func (m *mockAccounts) Get(ctx context.Context, id string) (domain.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return domain.Account{}, domain.NotFoundError{Resource: "account"}
	}
	return account, nil
}

func (m *mockAccounts) Delete(ctx context.Context, id string) error {
	delete(m.accounts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockTasks struct {
	byOwner  map[string]int
	failures int
	calls    int
}

func (m *mockTasks) DeleteByOwner(ctx context.Context, accountID string) error {
	m.calls++
	if m.failures > 0 {
		m.failures--
		return fmt.Errorf("task store unavailable")
	}
	delete(m.byOwner, accountID)
	return nil
}

type mockChallenges struct {
	participants map[string]map[string]bool
	counts       map[string]int
}

func (m *mockChallenges) LeaveAll(ctx context.Context, accountID string) error {
	for challengeID, members := range m.participants {
		if members[accountID] {
			delete(members, accountID)
			m.counts[challengeID]--
		}
	}
	return nil
}

type mockGroups struct {
	groups map[string]*domain.Group
}

func (m *mockGroups) MembershipsOf(ctx context.Context, accountID string) ([]string, error) {
	var ids []string
	for id, g := range m.groups {
		for _, member := range g.Members {
			if member.AccountID == accountID {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockGroups) RemoveMember(ctx context.Context, groupID, accountID string) error {
	g, ok := m.groups[groupID]
	if !ok {
		return nil
	}
	exit := domain.PlanExit(*g, accountID)
	var remaining []domain.GroupMember
	for _, member := range g.Members {
		if member.AccountID != accountID {
			remaining = append(remaining, member)
		}
	}
	g.Members = remaining
	switch exit.Kind {
	case domain.GroupExitDelete:
		delete(m.groups, groupID)
	case domain.GroupExitPromote:
		g.LeaderID = exit.NewLeaderID
	}
	return nil
}

type mockSessions struct {
	revoked  []string
	failures int
}

func (m *mockSessions) RevokeAll(ctx context.Context, accountID string) error {
	if m.failures > 0 {
		m.failures--
		return fmt.Errorf("redis unavailable")
	}
	m.revoked = append(m.revoked, accountID)
	return nil
}

type mockGuard struct {
	held     map[string]bool
	released int
}

func (m *mockGuard) Acquire(ctx context.Context, accountID string) (func(), error) {
	if m.held[accountID] {
		return nil, domain.ErrDeletionInProgress
	}
	return func() { m.released++ }, nil
}

type sentMail struct {
	to, subject, body string
}

type mockNotifier struct {
	sent []sentMail
	err  error
}

func (m *mockNotifier) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// --- fixture ---

type fixture struct {
	accounts   *mockAccounts
	tasks      *mockTasks
	challenges *mockChallenges
	groups     *mockGroups
	sessions   *mockSessions
	guard      *mockGuard
	notifier   *mockNotifier
	uc         *DeletionUsecase
}

const opsMailbox = "ops@questlog.dev"

func newFixture() *fixture {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	f := &fixture{
		accounts: &mockAccounts{accounts: map[string]domain.Account{
			"alice": localAccount(domain.HashMethodBcrypt, "hunter2"),
		}},
		tasks: &mockTasks{byOwner: map[string]int{"alice": 4, "bob": 2}},
		challenges: &mockChallenges{
			participants: map[string]map[string]bool{
				"ch1": {"alice": true, "bob": true, "carol": true},
				"ch2": {"bob": true},
			},
			counts: map[string]int{"ch1": 3, "ch2": 1},
		},
		groups: &mockGroups{groups: map[string]*domain.Group{
			"party1": {
				ID: "party1", Type: domain.GroupTypeParty, Privacy: domain.GroupPrivacyPrivate,
				LeaderID: "alice",
				Members:  []domain.GroupMember{{AccountID: "alice", JoinedAt: base}},
			},
			"guild1": {
				ID: "guild1", Type: domain.GroupTypeGuild, Privacy: domain.GroupPrivacyPublic,
				LeaderID: "alice",
				Members: []domain.GroupMember{
					{AccountID: "alice", JoinedAt: base},
					{AccountID: "bob", JoinedAt: base.Add(time.Hour)},
					{AccountID: "carol", JoinedAt: base.Add(2 * time.Hour)},
				},
			},
			"guild2": {
				ID: "guild2", Type: domain.GroupTypeGuild, Privacy: domain.GroupPrivacyPrivate,
				LeaderID: "bob",
				Members: []domain.GroupMember{
					{AccountID: "bob", JoinedAt: base},
					{AccountID: "alice", JoinedAt: base.Add(time.Hour)},
				},
			},
			"guild3": {
				ID: "guild3", Type: domain.GroupTypeGuild, Privacy: domain.GroupPrivacyPublic,
				LeaderID: "carol",
				Members:  []domain.GroupMember{{AccountID: "carol", JoinedAt: base}},
			},
		}},
		sessions: &mockSessions{},
		guard:    &mockGuard{held: map[string]bool{}},
		notifier: &mockNotifier{},
	}

	f.uc = NewDeletionUsecase(
		f.accounts, f.tasks, f.challenges, f.groups, f.sessions, f.guard,
		f.notifier, NewCredentialVerifier(fakePassword{}), opsMailbox,
	)
	return f
}

func (f *fixture) accountStillIntact(t *testing.T) {
	t.Helper()
	if _, ok := f.accounts.accounts["alice"]; !ok {
		t.Fatalf("account record should still exist")
	}
	if f.tasks.byOwner["alice"] != 4 {
		t.Fatalf("tasks should be untouched, got %d", f.tasks.byOwner["alice"])
	}
	if f.challenges.counts["ch1"] != 3 {
		t.Fatalf("challenge count should be untouched, got %d", f.challenges.counts["ch1"])
	}
	if _, ok := f.groups.groups["party1"]; !ok {
		t.Fatalf("party should be untouched")
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("no notification expected, got %d", len(f.notifier.sent))
	}
}

// --- tests ---

func TestDeleteCascades(t *testing.T) {
	f := newFixture()

	err := f.uc.Delete(context.Background(), DeletionInput{
		AccountID: "alice", Password: "hunter2", Feedback: "so long",
	})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, ok := f.accounts.accounts["alice"]; ok {
		t.Fatalf("account record should be gone")
	}
	if _, ok := f.tasks.byOwner["alice"]; ok {
		t.Fatalf("expected zero tasks left for alice")
	}
	if f.tasks.byOwner["bob"] != 2 {
		t.Fatalf("unrelated tasks should survive")
	}

	if f.challenges.counts["ch1"] != 2 {
		t.Fatalf("expected ch1 member count 2, got %d", f.challenges.counts["ch1"])
	}
	if f.challenges.participants["ch1"]["alice"] {
		t.Fatalf("alice should no longer participate in ch1")
	}
	if f.challenges.counts["ch2"] != 1 {
		t.Fatalf("unjoined challenge should be untouched")
	}

	if _, ok := f.groups.groups["party1"]; ok {
		t.Fatalf("solo party should be deleted")
	}

	guild1 := f.groups.groups["guild1"]
	if guild1 == nil {
		t.Fatalf("guild1 should survive")
	}
	if guild1.LeaderID != "bob" {
		t.Fatalf("expected earliest-joined successor bob, got %s", guild1.LeaderID)
	}
	for _, member := range guild1.Members {
		if member.AccountID == "alice" {
			t.Fatalf("alice should be removed from guild1")
		}
	}

	guild2 := f.groups.groups["guild2"]
	if guild2 == nil || guild2.LeaderID != "bob" {
		t.Fatalf("guild2 should keep its original leader")
	}
	if len(guild2.Members) != 1 {
		t.Fatalf("guild2 should only have bob left")
	}

	guild3 := f.groups.groups["guild3"]
	if guild3 == nil || guild3.LeaderID != "carol" || len(guild3.Members) != 1 {
		t.Fatalf("sibling guild must be unaffected")
	}

	if len(f.sessions.revoked) != 1 || f.sessions.revoked[0] != "alice" {
		t.Fatalf("expected sessions revoked for alice")
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(f.notifier.sent))
	}
	if f.notifier.sent[0].to != opsMailbox {
		t.Fatalf("notification should go to ops mailbox")
	}
	if !strings.Contains(f.notifier.sent[0].body, "so long") {
		t.Fatalf("notification should carry the feedback text")
	}

	if f.guard.released != 1 {
		t.Fatalf("guard should be released once, got %d", f.guard.released)
	}
}

func TestDeleteWrongPassword(t *testing.T) {
	f := newFixture()

	err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "wrong"})
	if !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	f.accountStillIntact(t)
}

func TestDeleteMissingPassword(t *testing.T) {
	f := newFixture()

	err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice"})
	if !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	f.accountStillIntact(t)
}

func TestDeleteExternalAccountConfirmation(t *testing.T) {
	f := newFixture()
	f.accounts.accounts["alice"] = externalAccount()

	err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "sub123"})
	if !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("provider token must not pass, got %v", err)
	}

	err = f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: domain.ExternalAuthConfirmation})
	if err != nil {
		t.Fatalf("confirmation phrase should pass, got %v", err)
	}
	if _, ok := f.accounts.accounts["alice"]; ok {
		t.Fatalf("account should be deleted")
	}
}

func TestDeleteBlockedByActiveSubscription(t *testing.T) {
	f := newFixture()
	account := f.accounts.accounts["alice"]
	account.Subscription = &domain.SubscriptionRef{CustomerID: "cus_123", PlanID: "basic"}
	f.accounts.accounts["alice"] = account

	err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2"})
	if !errors.Is(err, domain.ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
	f.accountStillIntact(t)
}

func TestDeleteFeedbackBoundary(t *testing.T) {
	atLimit := strings.Repeat("x", domain.FeedbackMaxLength)

	f := newFixture()
	err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2", Feedback: atLimit})
	if err != nil {
		t.Fatalf("feedback at the limit should pass, got %v", err)
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.sent))
	}

	f = newFixture()
	err = f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2", Feedback: atLimit + "x"})
	if !errors.Is(err, domain.ErrFeedbackTooLong) {
		t.Fatalf("expected ErrFeedbackTooLong, got %v", err)
	}
	f.accountStillIntact(t)
}

func TestDeleteWithoutFeedbackSendsNothing(t *testing.T) {
	f := newFixture()

	if err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("expected zero notifications, got %d", len(f.notifier.sent))
	}
}

func TestDeleteNotificationFailureDoesNotSurface(t *testing.T) {
	f := newFixture()
	f.notifier.err = fmt.Errorf("smtp down")

	err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2", Feedback: "bye"})
	if err != nil {
		t.Fatalf("notification failure must not surface, got %v", err)
	}
	if _, ok := f.accounts.accounts["alice"]; ok {
		t.Fatalf("account should be deleted regardless of notifier failure")
	}
}

func TestDeleteAlreadyDeletedAccount(t *testing.T) {
	f := newFixture()

	if err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2"}); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}

	err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteGuardConflict(t *testing.T) {
	f := newFixture()
	f.guard.held["alice"] = true

	err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2"})
	if !errors.Is(err, domain.ErrDeletionInProgress) {
		t.Fatalf("expected ErrDeletionInProgress, got %v", err)
	}
	f.accountStillIntact(t)
}

func TestDeleteRetriesTransientCleanupFailure(t *testing.T) {
	f := newFixture()
	f.tasks.failures = 2 // recovers within the attempt budget

	if err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2"}); err != nil {
		t.Fatalf("expected retry to absorb transient failure, got %v", err)
	}
	if f.tasks.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", f.tasks.calls)
	}
}

func TestDeleteReinvokeAfterPartialFailure(t *testing.T) {
	f := newFixture()
	// Sessions fail past the attempt budget: tasks, challenges and groups have
	// already been cleaned when the first invocation gives up.
	f.sessions.failures = cleanupAttempts

	err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2"})
	if err == nil {
		t.Fatalf("expected first invocation to fail")
	}
	if _, ok := f.accounts.accounts["alice"]; !ok {
		t.Fatalf("account record must survive a failed cascade")
	}

	// Second invocation re-observes the cleaned state; counters must not be
	// adjusted twice.
	if err := f.uc.Delete(context.Background(), DeletionInput{AccountID: "alice", Password: "hunter2"}); err != nil {
		t.Fatalf("re-invocation should succeed: %v", err)
	}
	if f.challenges.counts["ch1"] != 2 {
		t.Fatalf("challenge count must be decremented exactly once, got %d", f.challenges.counts["ch1"])
	}
	if _, ok := f.accounts.accounts["alice"]; ok {
		t.Fatalf("account should be deleted after re-invocation")
	}
}
