package domain

const (
	RequesterIDCtxKey  = "qd-requesterId"
	SessionTokenCtxKey = "qd-sessionToken"
)

const (
	// ExternalAuthConfirmation is the exact phrase an externally-authenticated
	// account must supply in place of a password to confirm deletion.
	ExternalAuthConfirmation = "DELETE"

	// FeedbackMaxLength caps optional deletion feedback, in characters.
	FeedbackMaxLength = 10000

	// OpsContact is where users are pointed for feedback over the limit.
	OpsContact = "hello@questlog.dev"
)
