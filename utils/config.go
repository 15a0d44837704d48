package utils

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	LogLevel        string
	UnlinkOnDestroy bool
}

func GetConfig() *AppConfig {

	godotenv.Load()

	var appConfig = AppConfig{LogLevel: "info", UnlinkOnDestroy: true}

	if logLevel := os.Getenv("LINKAGE_LOG_LEVEL"); len(logLevel) > 0 {
		appConfig.LogLevel = logLevel
	}

	if unlinkOnDestroy := os.Getenv("LINKAGE_UNLINK_ON_DESTROY"); len(unlinkOnDestroy) > 0 {
		if parsed, err := strconv.ParseBool(unlinkOnDestroy); err == nil {
			appConfig.UnlinkOnDestroy = parsed
		}
	}

	return &appConfig
}
