package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries every externally supplied setting. It is loaded once
// at startup and passed down explicitly; nothing reads the environment
// after Load returns.
type Config struct {
	Port                    string
	Env                     string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	JWTSecret               string
	SMTPHost                string
	SMTPPort                string
	SMTPUser                string
	SMTPPassword            string
	SupportEmail            string
	UploadDir               string
	FirebaseCredentialsPath string
}

// Load reads configuration from the environment (and .env if present)
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "debatify"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		SMTPHost:                getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:                getEnv("SMTP_PORT", "587"),
		SMTPUser:                getEnv("EMAIL_USER", ""),
		SMTPPassword:            getEnv("EMAIL_PASS", ""),
		SupportEmail:            getEnv("SUPPORT_EMAIL", "support@debatify.com"),
		UploadDir:               getEnv("UPLOAD_DIR", "uploads"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
