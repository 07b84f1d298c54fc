package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// RejectionError is a pre-cascade rejection of a deletion request. No
// destructive step has run when one of these is returned, so the caller can
// correct the input and retry.
type RejectionError struct {
	Reason  string
	Message string
}

func (e RejectionError) Error() string {
	return e.Message
}

var (
	// ErrMissingCredential: no password / confirmation supplied at all.
	ErrMissingCredential = RejectionError{
		Reason:  "missingCredential",
		Message: "missing password or confirmation phrase",
	}
	// ErrInvalidCredential: supplied credential does not match.
	ErrInvalidCredential = RejectionError{
		Reason:  "invalidCredential",
		Message: "wrong password or confirmation phrase",
	}
	// ErrNotEligible: the account holds state incompatible with deletion.
	ErrNotEligible = RejectionError{
		Reason:  "notEligible",
		Message: "cancel your active subscription before deleting your account",
	}
	// ErrFeedbackTooLong: optional feedback exceeds FeedbackMaxLength.
	ErrFeedbackTooLong = RejectionError{
		Reason:  "feedbackTooLong",
		Message: fmt.Sprintf("feedback is limited to %d characters; for anything longer, email %s", FeedbackMaxLength, OpsContact),
	}
	// ErrDeletionInProgress: another cascade already holds this account.
	ErrDeletionInProgress = RejectionError{
		Reason:  "deletionInProgress",
		Message: "a deletion for this account is already in progress",
	}
)
