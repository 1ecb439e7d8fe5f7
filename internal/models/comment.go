package models

import "time"

type Comment struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;index" json:"post_id"`
	Username  string    `gorm:"not null" json:"username"`
	AuthType  Method    `gorm:"not null" json:"auth_type"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateCommentRequest struct {
	Text string `json:"text" form:"text" binding:"required"`
}
