package models

import (
	"time"
)

type Account struct {
	ID        string `json:"id" gorm:"primaryKey;type:text"`
	LoginName string `json:"loginName" gorm:"type:text;uniqueIndex"`
	Email     string `json:"email" gorm:"type:text;index"`

	AuthKind        string `json:"authKind" gorm:"type:text;not null"`
	HashedPassword  string `json:"-" gorm:"type:text"`
	Salt            string `json:"-" gorm:"type:text"`
	HashMethod      string `json:"-" gorm:"type:text"`
	Provider        string `json:"provider" gorm:"type:text"`
	ProviderSubject string `json:"-" gorm:"type:text"`

	CustomerID *string `json:"customerID" gorm:"type:text"`
	PlanID     *string `json:"planID" gorm:"type:text"`

	Balance float64   `json:"balance" gorm:"not null;default:0"`
	CDate   time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Group struct {
	ID       string    `json:"id" gorm:"primaryKey;type:text"`
	Name     string    `json:"name" gorm:"type:text"`
	Type     string    `json:"type" gorm:"type:text;not null"`
	Privacy  string    `json:"privacy" gorm:"type:text;not null"`
	LeaderID string    `json:"leaderID" gorm:"type:text;index"`
	CDate    time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type GroupMember struct {
	GroupID   string    `json:"groupID" gorm:"primaryKey;type:text"`
	Group     Group     `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AccountID string    `json:"accountID" gorm:"primaryKey;type:text;index"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Challenge struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	Name        string    `json:"name" gorm:"type:text"`
	MemberCount int       `json:"memberCount" gorm:"not null;default:0"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type ChallengeMember struct {
	ChallengeID string    `json:"challengeID" gorm:"primaryKey;type:text"`
	Challenge   Challenge `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AccountID   string    `json:"accountID" gorm:"primaryKey;type:text;index"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Task struct {
	ID      string    `json:"id" gorm:"primaryKey;type:text"`
	OwnerID string    `json:"ownerID" gorm:"type:text;index;not null"`
	Type    string    `json:"type" gorm:"type:text"`
	Text    string    `json:"text" gorm:"type:text"`
	CDate   time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
