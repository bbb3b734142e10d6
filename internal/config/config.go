package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         string
	DBDSN        string
	RedisAddr    string
	LogFile      string
	StoreTimeout time.Duration
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "stash.db"
	} // sqlite file in project root
	redisAddr := os.Getenv("REDIS_ADDR") // empty disables the view cache
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./stash.log"
	}
	timeout := 5 * time.Second
	if v := os.Getenv("STORE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
	}

	cfg := Config{Port: port, DBDSN: dsn, RedisAddr: redisAddr, LogFile: logFile, StoreTimeout: timeout}
	log.Printf("[config] PORT=%s DB_DSN=%s REDIS_ADDR=%s LOG_FILE=%s STORE_TIMEOUT=%s",
		cfg.Port, cfg.DBDSN, cfg.RedisAddr, cfg.LogFile, cfg.StoreTimeout)
	return cfg
}
