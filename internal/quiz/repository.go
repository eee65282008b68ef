package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"

	"quiz-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns whitelists the sort keys accepted for quiz listings.
var sortColumns = map[string]string{
	"id":        "id",
	"title":     "title",
	"createdAt": "created_at",
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(quiz).Error
	if err != nil {
		log.Printf("Error creating quiz: %v", err)
		return fmt.Errorf("quiz.CreateQuiz: %w", err)
	}
	log.Printf("Created quiz with ID: %d", quiz.ID)
	return nil
}

// GetQuiz loads a quiz together with its author.
func (r *Repository) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).Preload("Author").First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		log.Printf("Error getting quiz %d: %v", id, err)
		return nil, fmt.Errorf("quiz.GetQuiz: %w", err)
	}
	return &quiz, nil
}

func (r *Repository) ListQuizzes(ctx context.Context, req models.PageRequest) ([]models.Quiz, int64, error) {
	column, ok := sortColumns[req.Sort]
	if !ok {
		column = "id"
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Quiz{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("quiz.ListQuizzes: count: %w", err)
	}

	query := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: req.Desc})
	if column != "id" {
		query = query.Order("id ASC")
	}

	var quizzes []models.Quiz
	err := query.Offset(req.Offset()).Limit(req.Size).Find(&quizzes).Error
	if err != nil {
		log.Printf("Error listing quizzes: %v", err)
		return nil, 0, fmt.Errorf("quiz.ListQuizzes: %w", err)
	}
	return quizzes, total, nil
}

// DeleteQuiz removes a quiz and its completions in one transaction.
func (r *Repository) DeleteQuiz(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&models.Completion{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Quiz{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrQuizNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrQuizNotFound) {
			return err
		}
		log.Printf("Error deleting quiz %d: %v", id, err)
		return fmt.Errorf("quiz.DeleteQuiz: %w", err)
	}
	log.Printf("Deleted quiz with ID: %d", id)
	return nil
}
