package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"quiz-service/internal/models"
	"quiz-service/pkg/cache"
)

const (
	MessageCorrect = "Congratulations, you're right!"
	MessageWrong   = "Wrong! Please, try again."
)

const evictAttempts = 2

// Event types pushed to connected clients.
const (
	EventQuizCreated = "quiz_created"
	EventQuizDeleted = "quiz_deleted"
	EventQuizSolved  = "quiz_solved"
)

type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id uint) (*models.Quiz, error)
	ListQuizzes(ctx context.Context, req models.PageRequest) ([]models.Quiz, int64, error)
	DeleteQuiz(ctx context.Context, id uint) error
}

type CompletionLog interface {
	CreateCompletion(ctx context.Context, completion *models.Completion) error
	ListCompletionsByUser(ctx context.Context, userID uint, req models.PageRequest) ([]models.Completion, int64, error)
}

// UserDirectory resolves callers by email. It returns auth.ErrUserNotFound
// for unknown addresses.
type UserDirectory interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type Cache interface {
	GetQuiz(ctx context.Context, id uint) (*models.Quiz, error)
	SetQuiz(ctx context.Context, quiz *models.Quiz) error
	DeleteQuiz(ctx context.Context, id uint) error
}

type Broadcaster interface {
	BroadcastMessage(messageType string, data interface{})
}

// NewQuiz holds the author-supplied fields of a quiz.
type NewQuiz struct {
	Title   string
	Text    string
	Options []string
	Answer  []int
}

type Service struct {
	quizzes     QuizStore
	completions CompletionLog
	users       UserDirectory
	cache       Cache
	hub         Broadcaster
	now         func() time.Time
}

// NewService wires the quiz service. cache and hub may be nil.
func NewService(quizzes QuizStore, completions CompletionLog, users UserDirectory, cache Cache, hub Broadcaster) *Service {
	return &Service{
		quizzes:     quizzes,
		completions: completions,
		users:       users,
		cache:       cache,
		hub:         hub,
		now:         time.Now,
	}
}

func (s *Service) CreateQuiz(ctx context.Context, input NewQuiz, ownerEmail string) (*models.Quiz, error) {
	if err := validateNewQuiz(input); err != nil {
		return nil, err
	}

	owner, err := s.users.GetUserByEmail(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	options := make([]string, len(input.Options))
	copy(options, input.Options)

	quiz := &models.Quiz{
		Title:    input.Title,
		Text:     input.Text,
		Options:  options,
		Answer:   NormalizeAnswer(input.Answer),
		AuthorID: owner.ID,
		Author:   *owner,
	}
	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}

	s.cacheQuiz(ctx, quiz)
	s.broadcast(EventQuizCreated, quiz.ToDTO())
	return quiz, nil
}

// GetQuiz returns the quiz with the given id. A missing quiz is reported as
// found == false with a nil error.
func (s *Service) GetQuiz(ctx context.Context, id uint) (*models.Quiz, bool, error) {
	quiz, err := s.findQuiz(ctx, id)
	if err != nil {
		if errors.Is(err, ErrQuizNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return quiz, true, nil
}

func (s *Service) ListQuizzes(ctx context.Context, req models.PageRequest) (models.Page[models.Quiz], error) {
	req, err := normalizePageRequest(req, true)
	if err != nil {
		return models.Page[models.Quiz]{}, err
	}

	quizzes, total, err := s.quizzes.ListQuizzes(ctx, req)
	if err != nil {
		return models.Page[models.Quiz]{}, err
	}
	return models.NewPage(quizzes, req, total), nil
}

// SolveQuiz checks a submitted answer and records a completion when it
// matches the stored answer set exactly.
func (s *Service) SolveQuiz(ctx context.Context, id uint, answer []int, callerEmail string) (models.Feedback, error) {
	quiz, err := s.findQuiz(ctx, id)
	if err != nil {
		return models.Feedback{}, err
	}

	if !SameAnswer(quiz.Answer, answer) {
		return models.Feedback{Success: false, Message: MessageWrong}, nil
	}

	user, err := s.users.GetUserByEmail(ctx, callerEmail)
	if err != nil {
		return models.Feedback{}, err
	}

	completion := &models.Completion{
		QuizID:      quiz.ID,
		UserID:      user.ID,
		CompletedAt: s.now(),
	}
	if err := s.completions.CreateCompletion(ctx, completion); err != nil {
		if errors.Is(err, ErrQuizNotFound) {
			s.evictQuiz(ctx, quiz.ID)
		}
		return models.Feedback{}, err
	}
	log.Printf("User %d solved quiz %d", user.ID, quiz.ID)

	s.broadcast(EventQuizSolved, map[string]interface{}{
		"quizId":      quiz.ID,
		"completedAt": models.FormatCompletedAt(completion.CompletedAt),
	})
	return models.Feedback{Success: true, Message: MessageCorrect}, nil
}

// DeleteQuiz removes a quiz and its completions. Only the author may delete.
func (s *Service) DeleteQuiz(ctx context.Context, id uint, callerEmail string) error {
	quiz, err := s.quizzes.GetQuiz(ctx, id)
	if err != nil {
		return err
	}

	if quiz.Author.Email != callerEmail {
		log.Printf("Rejected delete of quiz %d by %s", id, callerEmail)
		return ErrNotQuizOwner
	}

	if err := s.quizzes.DeleteQuiz(ctx, id); err != nil {
		return err
	}

	s.evictQuiz(ctx, id)
	s.broadcast(EventQuizDeleted, map[string]interface{}{"id": id})
	return nil
}

// ListCompletions returns the caller's completions, newest first.
func (s *Service) ListCompletions(ctx context.Context, callerEmail string, req models.PageRequest) (models.Page[models.CompletionDTO], error) {
	req, err := normalizePageRequest(req, false)
	if err != nil {
		return models.Page[models.CompletionDTO]{}, err
	}

	user, err := s.users.GetUserByEmail(ctx, callerEmail)
	if err != nil {
		return models.Page[models.CompletionDTO]{}, err
	}

	completions, total, err := s.completions.ListCompletionsByUser(ctx, user.ID, req)
	if err != nil {
		return models.Page[models.CompletionDTO]{}, err
	}

	page := models.NewPage(completions, req, total)
	return models.MapPage(page, models.Completion.ToDTO), nil
}

func (s *Service) findQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	if s.cache != nil {
		quiz, err := s.cache.GetQuiz(ctx, id)
		if err == nil {
			return quiz, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("Error reading quiz %d from cache: %v", id, err)
		}
	}

	quiz, err := s.quizzes.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheQuiz(ctx, quiz)
	return quiz, nil
}

func (s *Service) cacheQuiz(ctx context.Context, quiz *models.Quiz) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetQuiz(ctx, quiz); err != nil {
		log.Printf("Error caching quiz %d: %v", quiz.ID, err)
	}
}

// evictQuiz retries once; a quiz that still cannot be evicted stays readable
// until its cache entry expires.
func (s *Service) evictQuiz(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	var err error
	for attempt := 0; attempt < evictAttempts; attempt++ {
		if err = s.cache.DeleteQuiz(ctx, id); err == nil {
			return
		}
	}
	log.Printf("Error evicting quiz %d from cache: %v", id, err)
}

func (s *Service) broadcast(eventType string, data interface{}) {
	if s.hub != nil {
		s.hub.BroadcastMessage(eventType, data)
	}
}

func validateNewQuiz(input NewQuiz) error {
	fields := ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		fields["title"] = "must not be blank"
	}
	if strings.TrimSpace(input.Text) == "" {
		fields["text"] = "must not be blank"
	}
	if len(input.Options) < 2 {
		fields["options"] = "size must be at least 2"
	}
	for _, idx := range input.Answer {
		if idx < 0 || idx >= len(input.Options) {
			fields["answer"] = fmt.Sprintf("index %d is not a valid option", idx)
			break
		}
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func normalizePageRequest(req models.PageRequest, sortable bool) (models.PageRequest, error) {
	if req.Page < 0 {
		return req, ValidationError{"page": "must not be negative"}
	}
	if req.Size <= 0 {
		req.Size = models.DefaultPageSize
	}
	if req.Size > models.MaxPageSize {
		req.Size = models.MaxPageSize
	}
	if req.Page > math.MaxInt/req.Size {
		return req, ValidationError{"page": "is too large"}
	}
	if !sortable {
		req.Sort = ""
		req.Desc = false
		return req, nil
	}
	if req.Sort == "" {
		req.Sort = "id"
	}
	if _, ok := sortColumns[req.Sort]; !ok {
		return req, ValidationError{"sort": fmt.Sprintf("unknown sort property %q", req.Sort)}
	}
	return req, nil
}
