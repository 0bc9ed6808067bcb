package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// RequireAPIKey reads the OpenAI API key from the environment. A
// missing key halts startup: there is nothing useful the app can do
// without it.
func RequireAPIKey() (string, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return "", fmt.Errorf("OpenAI API key not found. Please set OPENAI_API_KEY in .env or environment variables")
	}
	return key, nil
}

// GetEnv returns the value of an environment variable or a default
func GetEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// LogFile returns the log file path from the environment
func LogFile() string {
	return GetEnv("VISION_CHAT_LOG_FILE", "vision-chat.log")
}

// LogLevel parses the configured log level, defaulting to info
func LogLevel() slog.Level {
	switch strings.ToUpper(GetEnv("VISION_CHAT_LOG_LEVEL", "INFO")) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
