package models

import (
	"strings"
	"time"
)

// Post represents authored content shown in the feeds.
type Post struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Title    string   `gorm:"not null" json:"title"`
	BodyText string   `gorm:"type:text;not null" json:"body_text"`
	MediaURL []string `gorm:"type:text;serializer:json" json:"media_url"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	User     *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	// Likes mirrors the number of Like rows for the post. It is only written in the
	// same transaction that inserts or deletes one of those rows.
	Likes     int        `gorm:"not null;default:0" json:"likes"`
	Comments  []*Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NormalizeList trims entries and drops blanks, keeping order.
func NormalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Comment is attached to exactly one post and owned by exactly one user.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	MediaURL  string    `json:"media_url,omitempty"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// LikeState is the caller's view of a post after a like operation.
type LikeState struct {
	PostID uint `json:"post_id"`
	Liked  bool `json:"liked"`
	Likes  int  `json:"likes"`
}
