package config

import (
	"fmt"
	"os"
	"strings"
)

// AppConfig gathers the runtime configuration of the server.
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabasePath   string
	SessionSecret  string
	GinMode        string
	UploadDir      string
	UploadURLPath  string
	RootAuthorName string
	RootAuthorPass string
	SiteBaseURL    string
}

// Load reads the configuration from environment variables, providing safe
// defaults for anything missing.
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "letopis.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "letopis-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	uploadDir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}

	uploadURLPath := strings.TrimSpace(os.Getenv("UPLOAD_URL_PATH"))
	if uploadURLPath == "" {
		uploadURLPath = "/static/uploads"
	}

	siteBaseURL := strings.TrimSpace(os.Getenv("SITE_BASE_URL"))
	if siteBaseURL == "" {
		siteBaseURL = "https://letopis.rs"
	}

	rootName := strings.TrimSpace(os.Getenv("ROOT_AUTHOR_NAME"))
	rootPass := strings.TrimSpace(os.Getenv("ROOT_AUTHOR_PASSWORD"))

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabasePath:   databasePath,
		SessionSecret:  sessionSecret,
		GinMode:        ginMode,
		UploadDir:      uploadDir,
		UploadURLPath:  uploadURLPath,
		RootAuthorName: rootName,
		RootAuthorPass: rootPass,
		SiteBaseURL:    siteBaseURL,
	}
}
