package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apihttp "github.com/mathevolve/mathevolve-api/internal/api/http"
	"github.com/mathevolve/mathevolve-api/internal/assessment"
	auth "github.com/mathevolve/mathevolve-api/internal/auth/middleware"
	"github.com/mathevolve/mathevolve-api/internal/config"
	"github.com/mathevolve/mathevolve-api/internal/content"
	"github.com/mathevolve/mathevolve-api/internal/db"
	"github.com/mathevolve/mathevolve-api/internal/report"
	"github.com/mathevolve/mathevolve-api/internal/student"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	students := student.NewSQLStore(dbh)
	quizzes := assessment.NewSQLStore(dbh)

	h := apihttp.NewRouter(apihttp.Deps{
		Auth:               auth.NewAuthService(cfg.JWTSecret, cfg.JWTTTL),
		Users:              auth.NewUserStore(dbh),
		Students:           student.NewService(students),
		Assessments:        assessment.NewService(quizzes, students),
		Content:            content.NewSQLStore(dbh),
		Reports:            report.NewService(students, quizzes, cfg.ExportPrefix),
		AllowClaimFallback: cfg.Mode == config.ModeOffline,
	}, apihttp.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimit:       cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		RequestTimeout:  cfg.RequestTimeout,
		AccessLog:       true,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop, release := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer release()

	go func() {
		log.Printf("mathevolve api listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-stop.Done()
	log.Printf("shutting down")
	sctx, scancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
