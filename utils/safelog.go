// utils/safelog.go
//
// Logging seguro: em produção, valores financeiros e identificadores de
// conta são mascarados antes de chegar ao log.
package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

var (
	// IsProduction turns masking on.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	LogLevel = getLogLevel()
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func getLogLevel() int {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

var (
	// monetary amounts, with or without currency marker
	amountRegex = regexp.MustCompile(`\b\d{2,}([.,]\d{1,2})?\s*(R\$|BRL|€|\$)?`)

	// full UUIDs are shortened, enough to correlate without exposing
	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// MaskString masks sensitive billing data in production.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}
	result := uuidRegex.ReplaceAllStringFunc(input, func(id string) string {
		return id[:8] + "..."
	})
	result = amountRegex.ReplaceAllString(result, "***")
	return result
}

// MaskAmount masks a monetary value in production.
func MaskAmount(amount float64) string {
	if IsProduction {
		return "R$ ***"
	}
	return fmt.Sprintf("R$ %.2f", amount)
}

func Debugf(format string, args ...interface{}) {
	if LogLevel <= LogLevelDebug {
		log.Print("🔍 " + MaskString(fmt.Sprintf(format, args...)))
	}
}

func Infof(format string, args ...interface{}) {
	if LogLevel <= LogLevelInfo {
		log.Print("ℹ️  " + MaskString(fmt.Sprintf(format, args...)))
	}
}

func Warnf(format string, args ...interface{}) {
	if LogLevel <= LogLevelWarn {
		log.Print("⚠️  " + MaskString(fmt.Sprintf(format, args...)))
	}
}

func Errorf(format string, args ...interface{}) {
	if LogLevel <= LogLevelError {
		log.Print("❌ " + MaskString(fmt.Sprintf(format, args...)))
	}
}
