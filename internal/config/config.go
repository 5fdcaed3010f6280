package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	LogToDB     bool
	CORSOrigins string

	Sheets SheetsConfig
	Sync   SyncConfig
	SMTP   SMTPConfig
	Notify NotifyConfig

	ChatPurgeKey string
}

// SheetsConfig selects and configures the spreadsheet source.
type SheetsConfig struct {
	Source          string // "google" or "xlsx"
	SpreadsheetID   string
	CredentialsFile string // service account JSON; empty means application default credentials
	XLSXPath        string
}

type SyncConfig struct {
	Tables          []TableConfig
	BoardNameTable  string // table whose header cell carries the board name
	BatchSize       int
	LeaseTTL        time.Duration
	Schedule        string // robfig/cron spec, empty disables scheduled runs
	RunsCollection  string
	LeaseCollection string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type NotifyConfig struct {
	Timezone           string
	MailCollection     string
	ChatCollection     string
	FailureCollection  string
	SettingsCollection string
	TokenCollection    string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	tables := DefaultTables()
	if path := getEnv("SYNC_TABLES_FILE", ""); path != "" {
		loaded, err := LoadTables(path)
		if err != nil {
			return nil, err
		}
		tables = loaded
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "board"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		LogToDB:     getEnv("LOG_TO_DB", "false") == "true",
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Sheets: SheetsConfig{
			Source:          getEnv("SHEETS_SOURCE", "google"),
			SpreadsheetID:   getEnv("SPREADSHEET_ID", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			XLSXPath:        getEnv("XLSX_PATH", "./board.xlsx"),
		},
		Sync: SyncConfig{
			Tables:          tables,
			BoardNameTable:  getEnv("SYNC_BOARD_NAME_TABLE", "adminNotes"),
			BatchSize:       getEnvInt("SYNC_BATCH_SIZE", 500),
			LeaseTTL:        getEnvDuration("SYNC_LEASE_TTL", 5*time.Minute),
			Schedule:        getEnv("SYNC_SCHEDULE", ""),
			RunsCollection:  getEnv("SYNC_RUNS_COLLECTION", "sync_runs"),
			LeaseCollection: getEnv("SYNC_LEASE_COLLECTION", "sync_leases"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Notify: NotifyConfig{
			Timezone:           getEnv("NOTIFY_TIMEZONE", "Asia/Seoul"),
			MailCollection:     getEnv("MAIL_COLLECTION", "mail"),
			ChatCollection:     getEnv("CHAT_COLLECTION", "chats"),
			FailureCollection:  getEnv("MAIL_FAILURE_COLLECTION", "mail_failures"),
			SettingsCollection: getEnv("SETTINGS_COLLECTION", "settings"),
			TokenCollection:    getEnv("WATCH_TOKEN_COLLECTION", "watch_tokens"),
		},
		ChatPurgeKey: getEnv("CHAT_PURGE_KEY", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
