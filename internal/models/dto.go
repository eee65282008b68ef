package models

import "time"

// CompletedAtLayout renders a completion time as an ISO-8601 local date-time
// without zone offset. Trailing zero fractions are dropped.
const CompletedAtLayout = "2006-01-02T15:04:05.999999999"

// QuizDTO is the public view of a quiz. The answer key and author are never
// exposed.
type QuizDTO struct {
	ID      uint     `json:"id"`
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

func (q Quiz) ToDTO() QuizDTO {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return QuizDTO{
		ID:      q.ID,
		Title:   q.Title,
		Text:    q.Text,
		Options: options,
	}
}

type CompletionDTO struct {
	QuizID      uint   `json:"quizId"`
	CompletedAt string `json:"completedAt"`
}

func (c Completion) ToDTO() CompletionDTO {
	return CompletionDTO{
		QuizID:      c.QuizID,
		CompletedAt: FormatCompletedAt(c.CompletedAt),
	}
}

func FormatCompletedAt(t time.Time) string {
	return t.In(time.Local).Format(CompletedAtLayout)
}

// Feedback is the outcome of a solve attempt.
type Feedback struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
