package domain

import "time"

type GroupType string

const (
	GroupTypeParty GroupType = "party"
	GroupTypeGuild GroupType = "guild"
)

type GroupPrivacy string

const (
	GroupPrivacyPrivate GroupPrivacy = "private"
	GroupPrivacyPublic  GroupPrivacy = "public"
)

// GroupMember is one account's membership in a group.
type GroupMember struct {
	AccountID string    `json:"accountID"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// Group is a party or guild. Invariant: a group with at least one member has
// exactly one leader, and the leader is a current member. Parties are
// implicitly private.
type Group struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     GroupType     `json:"type"`
	Privacy  GroupPrivacy  `json:"privacy"`
	LeaderID string        `json:"leaderID"`
	Members  []GroupMember `json:"members,omitempty"`
}

type GroupExitKind int

const (
	// GroupExitLeave removes the membership and nothing else.
	GroupExitLeave GroupExitKind = iota
	// GroupExitPromote removes the membership and installs NewLeaderID.
	GroupExitPromote
	// GroupExitDelete removes the group entirely.
	GroupExitDelete
)

// GroupExit is the planned effect of one account leaving one group.
type GroupExit struct {
	Kind        GroupExitKind
	NewLeaderID string
}

// PlanExit decides what removing accountID does to the group: delete it when
// no members remain, promote a successor when the leader leaves, or plain
// membership removal otherwise. The successor is the earliest-joined remaining
// member, ties broken by account ID, so the choice is deterministic and never
// the departing account. Calling it for an account that is not a member plans
// a no-op leave, which keeps retried cascades safe.
func PlanExit(g Group, accountID string) GroupExit {
	wasMember := false
	var remaining []GroupMember
	for _, m := range g.Members {
		if m.AccountID == accountID {
			wasMember = true
			continue
		}
		remaining = append(remaining, m)
	}

	if !wasMember {
		return GroupExit{Kind: GroupExitLeave}
	}

	if len(remaining) == 0 {
		return GroupExit{Kind: GroupExitDelete}
	}

	if g.LeaderID == accountID {
		successor := remaining[0]
		for _, m := range remaining[1:] {
			if m.JoinedAt.Before(successor.JoinedAt) ||
				(m.JoinedAt.Equal(successor.JoinedAt) && m.AccountID < successor.AccountID) {
				successor = m
			}
		}
		return GroupExit{Kind: GroupExitPromote, NewLeaderID: successor.AccountID}
	}

	return GroupExit{Kind: GroupExitLeave}
}
