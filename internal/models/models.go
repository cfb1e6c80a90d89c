package models

import (
	"time"
)

// Participant is one row per distinct sender identity. The ID is the opaque
// identity key assigned by the transport layer; it is never reused.
type Participant struct {
	ID          string `gorm:"primarykey" json:"id"`
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle"`

	// Pseudonym is the public-facing sequential number. It stays nil until
	// the participant's first content submission is evaluated, then is
	// assigned exactly once and never changed or reused.
	Pseudonym *int `gorm:"uniqueIndex" json:"pseudonym"`

	Trusted    bool `gorm:"not null;default:false" json:"trusted"`
	Banned     bool `gorm:"not null;default:false" json:"banned"`
	Reputation int  `gorm:"not null;default:0" json:"reputation"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StopWord is a single entry of the content filter. Matching is
// case-insensitive and substring-based, so entries are stored lower-cased.
type StopWord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Word      string    `gorm:"uniqueIndex;not null" json:"word"`
	CreatedAt time.Time `json:"createdAt"`
}

// Channel names for ContentLog entries.
const (
	ChannelPublic = "public"
	ChannelReview = "review"
)

// ContentLog is an append-only audit record of every item delivered to the
// public or review channel. Moderation decisions never read it.
type ContentLog struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	SenderID string `gorm:"index;not null" json:"senderId"`
	Kind     string `gorm:"not null" json:"kind"`
	Text     string `json:"text"`
	MediaRef string `json:"mediaRef"`
	Channel  string `gorm:"index;not null" json:"channel"`

	// Body is the rendered message as delivered to the channel.
	Body string `json:"body"`

	CreatedAt time.Time `json:"createdAt"`
}
