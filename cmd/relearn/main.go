package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relearn/internal/ai"
	"relearn/internal/auth"
	"relearn/internal/config"
	"relearn/internal/db"
	httpx "relearn/internal/http"
	"relearn/internal/push"
	"relearn/internal/question"
	"relearn/internal/source"
	"relearn/internal/study"
)

func main() {
	cfg, _ := config.Load()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal(err)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)

	sourceSvc := &source.Service{DB: gdb}

	gemini := &ai.Client{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	}
	generationSvc := &question.GenerationService{DB: gdb, Client: gemini, Pages: sourceSvc}
	querySvc := &question.QueryService{DB: gdb}
	attemptSvc := &question.AttemptService{
		Store: &question.AttemptRepo{DB: gdb},
		Eval:  &question.EvaluationService{Client: gemini},
	}

	sender, err := push.NewFCMSender(cfg.FCMProjectID, cfg.FCMServiceAccountFile)
	if err != nil {
		log.Fatalf("fcm sender: %v", err)
	}
	pushSvc := &push.Service{DB: gdb, Sender: sender}

	repo := &study.Repo{DB: gdb}
	tzOffset := time.Duration(cfg.PlanTZOffsetHours) * time.Hour

	planSvc := &study.PlanService{
		Plans:     repo,
		Schedules: repo,
		Pages:     repo,
		Snapshots: &study.SnapshotLookup{Source: sourceSvc},
		Generator: &study.QuestionGenerator{Questions: generationSvc},
		TZOffset:  tzOffset,
		TZName:    cfg.PlanTZName,
	}

	processor := &study.Processor{
		Plans:     repo,
		Schedules: repo,
		Snapshots: &study.SnapshotLookup{Source: sourceSvc},
		Questions: repo,
		Generator: &study.QuestionGenerator{Questions: generationSvc},
		Notifier:  &study.PushNotifier{Push: pushSvc},
	}

	scheduler := &study.Scheduler{
		Claims:     &study.ClaimService{DB: gdb},
		Processor:  processor,
		Interval:   cfg.SchedulerInterval,
		ClaimLimit: cfg.SchedulerClaimLimit,
		StaleAfter: cfg.SchedulerStaleAfter,
	}
	scheduler.Start()

	r := httpx.NewRouter(cfg, httpx.Deps{
		DB:        gdb,
		JWT:       jwtSvc,
		Source:    sourceSvc,
		Plans:     planSvc,
		Push:      pushSvc,
		Questions: querySvc,
		Attempts:  attemptSvc,
		Generator: generationSvc,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s\n", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	scheduler.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
