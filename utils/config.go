package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

/*
Config func to get env value from key ---
*/
func Config(key string) string {
	// load .env file
	loadDotEnv := os.Getenv("USE_DOTENV")
	if loadDotEnv != "off" {
		err := godotenv.Load(".env")
		if err != nil {
			fmt.Print("Error loading .env file")
		}
	}
	return os.Getenv(key)
}

func ConfigWithDefault(key string, fallback string) string {
	value := Config(key)
	if value == "" {
		return fallback
	}
	return value
}

// WaitingTimeout is how long a leg may sit in the waiting state before it is
// hung up. Zero disables the watchdog.
func WaitingTimeout() int {
	value := Config("WAITING_TIMEOUT")
	if value == "" {
		return 120
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 120
	}
	return result
}

// ContinueContext, ContinueExtension and ContinuePriority name the dialplan
// location a leg is sent to when it leaves the conference without hanging up.
func ContinueContext() string {
	return ConfigWithDefault("CONTINUE_CONTEXT", "default")
}

func ContinueExtension() string {
	return ConfigWithDefault("CONTINUE_EXTENSION", "s")
}

func ContinuePriority() int {
	value := Config("CONTINUE_PRIORITY")
	result, err := strconv.Atoi(value)
	if err != nil {
		return 1
	}
	return result
}
