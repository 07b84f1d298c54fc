package domain

// Challenge is a shared challenge many accounts participate in.
// Invariant: MemberCount equals the number of recorded participants.
type Challenge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}
