package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	FCMProjectID          string
	FCMServiceAccountFile string
	FCMVapidPublicKey     string

	SchedulerInterval   time.Duration
	SchedulerStaleAfter time.Duration
	SchedulerClaimLimit int

	// Fixed numeric offset for plan-local dates (hours east of UTC).
	PlanTZOffsetHours int
	PlanTZName        string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		GeminiAPIKey:  getenv("GEMINI_API_KEY", ""),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTimeout: time.Duration(getenvInt("GEMINI_TIMEOUT_MS", 15000)) * time.Millisecond,

		FCMProjectID:          getenv("FCM_PROJECT_ID", ""),
		FCMServiceAccountFile: getenv("FCM_SERVICE_ACCOUNT_FILE", ""),
		FCMVapidPublicKey:     getenv("FCM_VAPID_PUBLIC_KEY", ""),

		SchedulerInterval:   time.Duration(getenvInt("SCHEDULER_INTERVAL_SEC", 60)) * time.Second,
		SchedulerStaleAfter: time.Duration(getenvInt("SCHEDULER_STALE_AFTER_SEC", 600)) * time.Second,
		SchedulerClaimLimit: getenvInt("SCHEDULER_CLAIM_LIMIT", 20),

		PlanTZOffsetHours: getenvInt("PLAN_TZ_OFFSET_HOURS", 9),
		PlanTZName:        getenv("PLAN_TZ_NAME", "Asia/Seoul"),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.JWTSecret = mustGetenv("JWT_SECRET")
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
