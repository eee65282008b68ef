package server

import (
	"context"
	"net/http"
	"time"

	"quiz-service/internal/auth"
	"quiz-service/internal/quiz"
	"quiz-service/pkg/httpx"
	"quiz-service/pkg/websocket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

type Deps struct {
	DB             *gorm.DB
	AuthService    *auth.Service
	AuthHandler    *auth.Handler
	QuizHandler    *quiz.Handler
	Hub            *websocket.Hub
	AllowedOrigins []string
}

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(deps Deps) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", healthHandler(deps.DB)).Methods(http.MethodGet)

	router.HandleFunc("/api/register", deps.AuthHandler.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/login", deps.AuthHandler.Login).Methods(http.MethodPost)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(auth.Middleware(deps.AuthService))

	apiRouter.HandleFunc("/quizzes", deps.QuizHandler.CreateQuiz).Methods(http.MethodPost)
	apiRouter.HandleFunc("/quizzes", deps.QuizHandler.ListQuizzes).Methods(http.MethodGet)
	apiRouter.HandleFunc("/quizzes/completed", deps.QuizHandler.ListCompletions).Methods(http.MethodGet)
	apiRouter.HandleFunc("/quizzes/{id:[0-9]+}", deps.QuizHandler.GetQuiz).Methods(http.MethodGet)
	apiRouter.HandleFunc("/quizzes/{id:[0-9]+}", deps.QuizHandler.DeleteQuiz).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/quizzes/{id:[0-9]+}/solve", deps.QuizHandler.SolveQuiz).Methods(http.MethodPost)

	if deps.Hub != nil {
		wsRouter := router.PathPrefix("/ws").Subrouter()
		wsRouter.Use(auth.Middleware(deps.AuthService))
		wsRouter.HandleFunc("/quizzes", deps.Hub.HandleWebSocket)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	var handler http.Handler = router
	handler = corsMiddleware.Handler(handler)
	handler = httpx.Recover(handler)
	handler = httpx.Logger()(handler)
	handler = httpx.RequestID(handler)
	return handler
}

// OriginChecker accepts websocket upgrades from the configured origins and
// from clients that send no Origin header.
func OriginChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, origin := range allowed {
		if origin == "*" {
			wildcard = true
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func healthHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
