package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/questlog/questd/internal/domain"
)

var tracer = otel.Tracer("deletion")

// cleanupAttempts bounds retries of each idempotent cleanup step.
const cleanupAttempts = 3

// DeletionInput is the ephemeral per-request payload. It is consumed by one
// Delete call and never persisted.
type DeletionInput struct {
	AccountID string
	Password  string
	Feedback  string
}

// DeletionUsecase orchestrates the account deletion cascade: verify the
// credential, check eligibility, validate feedback, clean up everything the
// account owns or participates in, remove the account record last, then
// notify operations if feedback was left.
type DeletionUsecase struct {
	accounts    AccountRepository
	tasks       TaskRepository
	challenges  ChallengeRepository
	groups      GroupRepository
	sessions    SessionRevoker
	guard       DeletionGuard
	notifier    Notifier
	credentials *CredentialVerifier
	opsMailbox  string
}

func NewDeletionUsecase(
	accounts AccountRepository,
	tasks TaskRepository,
	challenges ChallengeRepository,
	groups GroupRepository,
	sessions SessionRevoker,
	guard DeletionGuard,
	notifier Notifier,
	credentials *CredentialVerifier,
	opsMailbox string,
) *DeletionUsecase {
	return &DeletionUsecase{
		accounts:    accounts,
		tasks:       tasks,
		challenges:  challenges,
		groups:      groups,
		sessions:    sessions,
		guard:       guard,
		notifier:    notifier,
		credentials: credentials,
		opsMailbox:  opsMailbox,
	}
}

// Delete runs the whole cascade for one account. Rejections (bad credential,
// active subscription, oversized feedback) happen before any destructive step
// and leave no side effect. Cleanup steps are idempotent, so the operation is
// safe to re-invoke after an infrastructure failure; re-invoking for an
// already-deleted account returns domain.ErrNotFound.
func (uc *DeletionUsecase) Delete(ctx context.Context, input DeletionInput) error {
	ctx, span := tracer.Start(ctx, "Deletion.Usecase.Delete")
	defer span.End()

	account, err := uc.accounts.Get(ctx, input.AccountID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := uc.credentials.Verify(account, input.Password); err != nil {
		span.RecordError(err)
		return err
	}

	if err := checkEligibility(account); err != nil {
		span.RecordError(err)
		return err
	}

	if err := validateFeedback(input.Feedback); err != nil {
		span.RecordError(err)
		return err
	}

	release, err := uc.guard.Acquire(ctx, account.ID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer release()

	if err := uc.cascade(ctx, account.ID); err != nil {
		span.RecordError(err)
		return err
	}

	// Strictly the last destructive step. Not retried here: the caller
	// re-invokes the whole operation, which re-observes state.
	if err := uc.accounts.Delete(ctx, account.ID); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "removing account record")
	}

	slog.InfoContext(ctx, "account deleted",
		slog.String("accountId", account.ID),
		slog.String("module", "deletion"),
	)

	uc.notify(ctx, account, input.Feedback)

	return nil
}

func checkEligibility(account domain.Account) error {
	if account.HasActiveSubscription() {
		return domain.ErrNotEligible
	}
	return nil
}

func validateFeedback(feedback string) error {
	if utf8.RuneCountInString(feedback) > domain.FeedbackMaxLength {
		return domain.ErrFeedbackTooLong
	}
	return nil
}

// cascade removes everything dependent on the account. The steps touch
// disjoint entity types and each is idempotent, so order among them is not
// load-bearing; all must complete before the account record goes.
func (uc *DeletionUsecase) cascade(ctx context.Context, accountID string) error {
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"purge tasks", func(ctx context.Context) error {
			return uc.tasks.DeleteByOwner(ctx, accountID)
		}},
		{"leave challenges", func(ctx context.Context) error {
			return uc.challenges.LeaveAll(ctx, accountID)
		}},
		{"leave groups", func(ctx context.Context) error {
			return uc.leaveGroups(ctx, accountID)
		}},
		{"revoke sessions", func(ctx context.Context) error {
			return uc.sessions.RevokeAll(ctx, accountID)
		}},
	}

	for _, step := range steps {
		if err := uc.runStep(ctx, accountID, step.name, step.run); err != nil {
			return errors.Wrapf(err, "deletion incomplete at %q", step.name)
		}
	}
	return nil
}

func (uc *DeletionUsecase) runStep(ctx context.Context, accountID, name string, run func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= cleanupAttempts; attempt++ {
		err = run(ctx)
		if err == nil {
			return nil
		}
		slog.WarnContext(ctx, "cleanup step failed",
			slog.String("step", name),
			slog.String("accountId", accountID),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
			slog.String("module", "deletion"),
		)
	}
	return err
}

func (uc *DeletionUsecase) leaveGroups(ctx context.Context, accountID string) error {
	groupIDs, err := uc.groups.MembershipsOf(ctx, accountID)
	if err != nil {
		return err
	}
	for _, groupID := range groupIDs {
		if err := uc.groups.RemoveMember(ctx, groupID, accountID); err != nil {
			return errors.Wrapf(err, "leaving group %s", groupID)
		}
	}
	return nil
}

// notify sends the user's parting feedback to the operations mailbox.
// Best effort: the deletion already committed, so failures are logged and
// swallowed. No feedback, no mail.
func (uc *DeletionUsecase) notify(ctx context.Context, account domain.Account, feedback string) {
	if feedback == "" {
		return
	}

	subject := fmt.Sprintf("Account deletion feedback from %s", account.LoginName)
	body := fmt.Sprintf(
		"Account %s (%s <%s>) was deleted.\r\n\r\nFeedback:\r\n%s\r\n",
		account.ID, account.LoginName, account.Email, feedback,
	)

	if err := uc.notifier.Send(ctx, uc.opsMailbox, subject, body); err != nil {
		slog.ErrorContext(ctx, "deletion feedback notification failed",
			slog.String("accountId", account.ID),
			slog.String("error", err.Error()),
			slog.String("module", "deletion"),
		)
	}
}
