package config

import (
	"log"
	"os"
)

type Config struct {
	Port       string
	APIBaseURL string
	SessionDSN string
	LogFile    string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	api := os.Getenv("API_BASE_URL")
	if api == "" {
		api = "http://localhost:8080/api"
	}
	dsn := os.Getenv("SESSION_DSN")
	if dsn == "" {
		dsn = "modiesel.db" // sqlite file in project root; postgres:// DSNs also accepted
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./modiesel.log"
	}

	cfg := Config{Port: port, APIBaseURL: api, SessionDSN: dsn, LogFile: logFile}
	log.Printf("[config] PORT=%s API_BASE_URL=%s SESSION_DSN=%s LOG_FILE=%s", cfg.Port, cfg.APIBaseURL, cfg.SessionDSN, cfg.LogFile)
	return cfg
}
