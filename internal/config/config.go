// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// OAuth (Google)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// OAuth (Kakao)
	KakaoRESTAPIKey   string
	KakaoClientSecret string
	KakaoRedirectURL  string

	// Session
	SessionMaxAge int // セッション有効期間（秒）

	// Rate Limit（req/min/user）
	RateLimitGeneral    int
	RateLimitListingReg int

	// Cleanup
	CleanupInterval time.Duration

	// Server
	ServerPort string
	BaseURL    string

	// OAuth stateクッキーのSecure属性。BaseURLがhttpsの場合に有効。
	CookieSecure bool

	// アプリへのコールバック先。ネイティブはカスタムスキーム（unihouse://oauth）、
	// Webビルドはオリジン配下のパスを指す。
	AppRedirectURL string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	if cfg.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}

	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	if cfg.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}

	cfg.KakaoRESTAPIKey = os.Getenv("KAKAO_REST_API_KEY")
	if cfg.KakaoRESTAPIKey == "" {
		missing = append(missing, "KAKAO_REST_API_KEY")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.GoogleRedirectURL = getEnvString("GOOGLE_REDIRECT_URL", cfg.BaseURL+"/auth/google/callback")
	cfg.KakaoRedirectURL = getEnvString("KAKAO_REDIRECT_URL", cfg.BaseURL+"/auth/kakao/callback")
	// Kakaoのclient_secretはコンソールで有効化した場合のみ必要
	cfg.KakaoClientSecret = getEnvString("KAKAO_CLIENT_SECRET", "")
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400*14)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitListingReg = getEnvInt("RATE_LIMIT_LISTING_REG", 10)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.AppRedirectURL = getEnvString("APP_REDIRECT_URL", "unihouse://oauth")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:19006")

	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("BASE_URL must start with http:// or https://: %s", cfg.BaseURL)
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
