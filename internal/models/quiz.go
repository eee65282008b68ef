package models

import (
	"time"

	"gorm.io/datatypes"
)

type Quiz struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time                   `json:"created_at"`
	Title       string                      `json:"title" gorm:"not null"`
	Text        string                      `json:"text" gorm:"not null"`
	Options     datatypes.JSONSlice[string] `json:"options" gorm:"not null"`
	Answer      datatypes.JSONSlice[int]    `json:"answer" gorm:"not null"`
	AuthorID    uint                        `json:"author_id" gorm:"not null;index"`
	Author      User                        `json:"author" gorm:"foreignKey:AuthorID"`
	Completions []Completion                `json:"-" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

// Completion records that a user submitted the exact answer set of a quiz.
type Completion struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	QuizID      uint      `json:"quiz_id" gorm:"not null;index"`
	UserID      uint      `json:"user_id" gorm:"not null;index:idx_completion_user_time,priority:1"`
	User        User      `json:"-" gorm:"foreignKey:UserID"`
	CompletedAt time.Time `json:"completed_at" gorm:"not null;index:idx_completion_user_time,priority:2"`
}

func (Completion) TableName() string {
	return "quiz_completions"
}
