package quiz

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrQuizNotFound = errors.New("quiz not found")
	ErrNotQuizOwner = errors.New("you can only delete your own quizzes")
)

// ValidationError maps a field name to the reason it was rejected.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
