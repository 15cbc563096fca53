package models

import "time"

type Feedback struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Message   string    `bson:"message" json:"message"`
	Rating    int       `bson:"rating,omitempty" json:"rating,omitempty"`
	Category  string    `bson:"category,omitempty" json:"category,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type InvitationCode struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	Code      string     `bson:"code" json:"code"`
	UsedBy    string     `bson:"usedBy,omitempty" json:"usedBy,omitempty"`
	UsedAt    *time.Time `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
}
