package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	CORSOrigins []string
	MediaDir    string // served under /media when set
}

func NewRouter(apiHandler *APIHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(opts.MediaDir))))
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", apiHandler.RegisterHandler)
		r.Post("/auth/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Get("/auth/me", apiHandler.MeHandler)
			r.Get("/stats", apiHandler.StatsHandler)

			r.Route("/notes", func(r chi.Router) {
				r.Post("/summarize", apiHandler.SummarizeNoteHandler)
				r.Get("/", apiHandler.ListNotesHandler)
				r.Get("/count", apiHandler.CountNotesHandler)
				r.Delete("/{id}", apiHandler.DeleteNoteHandler)
			})

			r.Route("/quiz", func(r chi.Router) {
				r.Post("/generate", apiHandler.GenerateQuizHandler)
				r.Get("/", apiHandler.ListQuizzesHandler)
				r.Get("/count", apiHandler.CountQuizzesHandler)
				r.Delete("/{id}", apiHandler.DeleteQuizHandler)
			})

			r.Route("/flashcards", func(r chi.Router) {
				r.Post("/generate", apiHandler.GenerateFlashcardsHandler)
				r.Get("/", apiHandler.ListFlashcardsHandler)
				r.Get("/count", apiHandler.CountFlashcardsHandler)
				r.Get("/{id}", apiHandler.GetFlashcardsHandler)
				r.Delete("/{id}", apiHandler.DeleteFlashcardsHandler)
			})

			r.Route("/planner", func(r chi.Router) {
				r.Post("/generate", apiHandler.GeneratePlanHandler)
				r.Get("/", apiHandler.ListPlansHandler)
				r.Delete("/{id}", apiHandler.DeletePlanHandler)
			})

			r.Route("/voice", func(r chi.Router) {
				r.Post("/upload", apiHandler.UploadVoiceHandler)
				r.Get("/", apiHandler.ListVoiceNotesHandler)
				r.Get("/count", apiHandler.CountVoiceNotesHandler)
				r.Delete("/{id}", apiHandler.DeleteVoiceNoteHandler)
			})
		})
	})

	return r
}
