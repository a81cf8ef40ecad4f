package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/mathevolve/mathevolve-api/internal/api"
	"github.com/mathevolve/mathevolve-api/internal/assessment"
	auth "github.com/mathevolve/mathevolve-api/internal/auth/middleware"
	"github.com/mathevolve/mathevolve-api/internal/content"
	"github.com/mathevolve/mathevolve-api/internal/rbac"
	"github.com/mathevolve/mathevolve-api/internal/report"
	"github.com/mathevolve/mathevolve-api/internal/student"
)

const (
	serviceName    = "MATHEVOLVE API"
	serviceVersion = "1.0.0"
)

// Deps are the services the routes are served from.
type Deps struct {
	Auth        *auth.AuthService
	Users       *auth.UserStore
	Students    *student.Service
	Assessments *assessment.Service
	Content     content.Store
	Reports     *report.Service

	// AllowClaimFallback lets a token's role stand when the account lookup
	// fails for reasons other than a missing account. Offline mode only.
	AllowClaimFallback bool
}

type Options struct {
	AllowedOrigins  []string
	RateLimit       int
	RateLimitWindow time.Duration
	RequestTimeout  time.Duration
	AccessLog       bool
}

// NewRouter builds the full HTTP surface: middleware chain, public student
// routes and the authenticated teacher/admin routes.
func NewRouter(d Deps, o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	if o.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	if o.RequestTimeout > 0 {
		r.Use(middleware.Timeout(o.RequestTimeout))
	}
	r.Use(
		middleware.SetHeader("X-Content-Type-Options", "nosniff"),
		middleware.SetHeader("X-Frame-Options", "DENY"),
		middleware.SetHeader("Referrer-Policy", "no-referrer"),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if o.RateLimit > 0 && o.RateLimitWindow > 0 {
		r.Use(httprate.Limit(o.RateLimit, o.RateLimitWindow,
			httprate.WithKeyByIP(),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				api.WriteErr(w, api.CodeRateLimited, "Too many requests, please try again later")
			}),
		))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.WriteErr(w, api.CodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.WriteErr(w, api.CodeNotFound, "Route not found")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteOK(w, map[string]any{"status": "ok", "timestamp": time.Now().UTC()})
	})

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/", func(w http.ResponseWriter, r *http.Request) {
			api.WriteOK(w, map[string]string{"name": serviceName, "version": serviceVersion, "status": "running"})
		})
		mountAuth(ar, d)
		mountStudents(ar, d)
		mountAdmin(ar, d)
	})
	return r
}

func mountAuth(r chi.Router, d Deps) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/login", auth.LoginHandler(d.Auth, d.Users))
		ar.Post("/verify", auth.VerifyHandler(d.Auth))
		ar.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(d.Auth))
			pr.Get("/me", auth.MeHandler(d.Users))
			pr.Post("/logout", auth.LogoutHandler())
			pr.Post("/password", auth.ChangePasswordHandler(d.Users))
		})
	})
}

// mountStudents wires the anonymous student-facing routes.
func mountStudents(r chi.Router, d Deps) {
	r.Route("/students", func(sr chi.Router) {
		sr.Post("/enter", EnterStudentHandler(d.Students, d.Assessments))
		sr.Get("/{code}", GetStudentHandler(d.Students, d.Assessments))
		sr.Get("/{code}/progress", StudentProgressHandler(d.Students, d.Assessments))
	})

	r.Route("/topics", func(tr chi.Router) {
		tr.Get("/", ListTopicsHandler(d.Content))
		tr.Get("/{id}", GetTopicHandler(d.Content))
		tr.Get("/{id}/content", TopicContentHandler(d.Content))
	})

	r.Route("/quizzes", func(qr chi.Router) {
		qr.Get("/topic/{topicID}", TopicQuizHandler(d.Assessments))
		qr.Get("/{id}", GetQuizHandler(d.Assessments))
		qr.Post("/{id}/submit", SubmitQuizHandler(d.Assessments))
		qr.Get("/{id}/attempts/{studentID}", QuizAttemptsHandler(d.Assessments))
	})

	r.Route("/tests", func(tr chi.Router) {
		tr.Get("/pre-test", TestQuizHandler(d.Assessments, assessment.TestPre))
		tr.Get("/post-test", TestQuizHandler(d.Assessments, assessment.TestPost))
		tr.Post("/pre-test/submit", SubmitTestHandler(d.Assessments, assessment.TestPre))
		tr.Post("/post-test/submit", SubmitTestHandler(d.Assessments, assessment.TestPost))
		tr.Get("/{testType}/status/{studentID}", TestStatusHandler(d.Assessments))
	})
}

// Protected API (JWT → role from DB → RBAC)
func mountAdmin(r chi.Router, d Deps) {
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(auth.JWTMiddleware(d.Auth))
		ar.Use(auth.AttachRoleFromDB(d.Users, d.AllowClaimFallback))
		ar.Use(rbac.RequireAny(rbac.PermResultsView, rbac.PermResultsExport, rbac.PermUsersManage))

		ar.With(rbac.Require(rbac.PermResultsView)).Get("/stats", StatsHandler(d.Reports))
		ar.With(rbac.Require(rbac.PermResultsView)).Get("/results", ResultsHandler(d.Reports))

		ar.Route("/export", func(er chi.Router) {
			er.Use(rbac.Require(rbac.PermResultsExport))
			er.Get("/csv", ExportHandler(d.Reports.ExportCSV))
			er.Get("/json", ExportHandler(d.Reports.ExportJSON))
			er.Get("/xlsx", ExportHandler(d.Reports.ExportXLSX))
		})

		ar.With(rbac.Require(rbac.PermUsersManage)).Get("/users", ListUsersHandler(d.Users))
		ar.With(rbac.Require(rbac.PermUsersManage)).Post("/users", CreateUsersHandler(d.Users))
		ar.With(rbac.Require(rbac.PermUsersManage)).Patch("/users/{user}/role", UpdateUserRoleHandler(d.Users))
	})
}
