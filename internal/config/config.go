// Package config loads runtime settings for the plate reader.
//
// Two layers exist. Config holds process settings read from the environment
// (optionally seeded from a .env file). Tuning holds the heuristic constants of
// the detection pipeline; it is an immutable value passed into every stage and
// may be partially overridden from a YAML file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds process-level settings.
type Config struct {
	// Debug enables verbose logging (PLATE_MCP_LOG_LEVEL=debug).
	Debug bool

	// TessdataPrefix points Tesseract at its trained data directory.
	TessdataPrefix string

	// TesseractLanguage is the Tesseract language code, "eng" by default.
	TesseractLanguage string

	// RekognitionEnabled turns on the AWS Rekognition text backend.
	RekognitionEnabled bool

	// AWSRegion is the region used for Rekognition.
	AWSRegion string

	// TuningFile is an optional YAML file overriding DefaultTuning.
	TuningFile string

	// HTTPAddr is the listen address of the HTTP API.
	HTTPAddr string
}

// Load reads .env (when present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	rekognition, _ := strconv.ParseBool(getEnv("PLATE_REKOGNITION_ENABLED", "false"))

	return &Config{
		Debug:              strings.EqualFold(getEnv("PLATE_MCP_LOG_LEVEL", "info"), "debug"),
		TessdataPrefix:     getEnv("TESSDATA_PREFIX", ""),
		TesseractLanguage:  getEnv("PLATE_TESSERACT_LANG", "eng"),
		RekognitionEnabled: rekognition,
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		TuningFile:         getEnv("PLATE_TUNING_FILE", ""),
		HTTPAddr:           getEnv("PLATE_HTTP_ADDR", ":8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
