package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey                string
	GeminiModel                 string
	GeminiTemperature           float32
	GeminiTranscribeTemperature float32
	DatabaseURL                 string
	HTTPPort                    string
	LogMode                     string
	JWTSecret                   string
	JWTTTLHours                 int
	UploadDir                   string
	MaxUploadMB                 int
	ObjectStorageMode           string
	GCSBucketName               string
	LocalMediaDir               string
	PublicBaseURL               string
	VoiceFolder                 string
	CORSOrigins                 []string
}

var AppConfig Config

// LoadConfig populates AppConfig from the environment and an optional .env file.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := FromEnv()
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// FromEnv reads the configuration without touching AppConfig.
func FromEnv() (Config, error) {
	cfg := Config{
		GeminiAPIKey:                strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		GeminiModel:                 getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiTemperature:           getEnvAsFloat32("GEMINI_TEMPERATURE", 0.3),
		GeminiTranscribeTemperature: getEnvAsFloat32("GEMINI_TRANSCRIBE_TEMPERATURE", 0.1),
		DatabaseURL:                 getEnv("DATABASE_URL", "study_assistant.db"),
		HTTPPort:                    getEnv("HTTP_PORT", "8080"),
		LogMode:                     getEnv("LOG_MODE", "development"),
		JWTSecret:                   strings.TrimSpace(getEnv("JWT_SECRET", "")),
		JWTTTLHours:                 getEnvAsInt("JWT_TTL_HOURS", 48),
		UploadDir:                   getEnv("UPLOAD_DIR", os.TempDir()),
		MaxUploadMB:                 getEnvAsInt("MAX_UPLOAD_MB", 25),
		ObjectStorageMode:           strings.ToLower(getEnv("OBJECT_STORAGE_MODE", "local")),
		GCSBucketName:               getEnv("GCS_BUCKET_NAME", ""),
		LocalMediaDir:               getEnv("LOCAL_MEDIA_DIR", "media"),
		PublicBaseURL:               strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		VoiceFolder:                 getEnv("VOICE_FOLDER", "ai-study-assistant/voice-notes"),
		CORSOrigins:                 splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	switch cfg.ObjectStorageMode {
	case "local":
	case "gcs":
		if cfg.GCSBucketName == "" {
			return Config{}, fmt.Errorf("GCS_BUCKET_NAME is required when OBJECT_STORAGE_MODE=gcs")
		}
	default:
		return Config{}, fmt.Errorf("invalid OBJECT_STORAGE_MODE %q; expected local or gcs", cfg.ObjectStorageMode)
	}

	if cfg.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY is not set; generation will serve fallback content")
	}
	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
