package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment. The company
// block is printed on every invoice PDF, so it lives here rather than in
// the database.
type Config struct {
	Addr              string
	DbDriver          string // 'sqlite' (single-site default) or 'mysql'
	DbDsn             string
	JwtSecret         string
	AllowRegistration bool
	AllowedOrigin     string

	CompanyName    string
	CompanyAddress string
	CompanyPan     string
	CompanyPhone   string
	DefaultVatRate float64
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		DbDriver:          getEnv("DB_DRIVER", "sqlite"),
		DbDsn:             getEnv("DB_DSN", "./db/moonal_udhyog.db"),
		JwtSecret:         os.Getenv("JWT_SECRET"),
		AllowRegistration: os.Getenv("ALLOW_REGISTRATION") == "true",
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		CompanyName:       getEnv("COMPANY_NAME", "Moonal Udhyog Pvt. Ltd."),
		CompanyAddress:    getEnv("COMPANY_ADDRESS", "Golbazar-4, Siraha, Nepal"),
		CompanyPan:        getEnv("COMPANY_PAN", ""),
		CompanyPhone:      getEnv("COMPANY_PHONE", ""),
		DefaultVatRate:    getEnvFloat("DEFAULT_VAT_RATE", 13),
	}

	if cfg.JwtSecret == "" {
		return cfg, errors.New("missing env: JWT_SECRET")
	}
	if cfg.DbDriver != "sqlite" && cfg.DbDriver != "mysql" {
		return cfg, errors.New("DB_DRIVER must be 'sqlite' or 'mysql'")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
