package creation

import "time"

type Type string

const (
	TypeArticle      Type = "article"
	TypeBlogTitle    Type = "blog-title"
	TypeImage        Type = "image"
	TypeResumeReview Type = "resume-review"
)

// Creation is one persisted record of a generative operation. Rows are append-only.
type Creation struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID    string    `gorm:"not null;index;column:user_id" json:"user_id"`
	Prompt    string    `gorm:"type:text;not null;column:prompt" json:"prompt"`
	Content   string    `gorm:"type:text;not null;column:content" json:"content"`
	Type      Type      `gorm:"type:text;not null;column:type" json:"type"`
	Publish   bool      `gorm:"not null;column:publish" json:"publish"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
}

func (Creation) TableName() string { return "creations" }
