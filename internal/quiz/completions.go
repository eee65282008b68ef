package quiz

import (
	"context"
	"fmt"
	"log"

	"quiz-service/internal/models"
	"quiz-service/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionRepository is the append-only log of solved quizzes.
type CompletionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

func (r *CompletionRepository) CreateCompletion(ctx context.Context, completion *models.Completion) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(completion).Error
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrQuizNotFound
		}
		log.Printf("Error saving completion of quiz %d by user %d: %v", completion.QuizID, completion.UserID, err)
		return fmt.Errorf("quiz.CreateCompletion: %w", err)
	}
	return nil
}

// ListCompletionsByUser returns the user's completions, newest first.
func (r *CompletionRepository) ListCompletionsByUser(ctx context.Context, userID uint, req models.PageRequest) ([]models.Completion, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Completion{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("quiz.ListCompletionsByUser: count: %w", err)
	}

	var completions []models.Completion
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Order("id DESC").
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&completions).Error
	if err != nil {
		log.Printf("Error listing completions for user %d: %v", userID, err)
		return nil, 0, fmt.Errorf("quiz.ListCompletionsByUser: %w", err)
	}
	return completions, total, nil
}

func (r *CompletionRepository) CountCompletions(ctx context.Context, quizID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Completion{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count, err
}
