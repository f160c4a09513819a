package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type EnvVars struct {
	Config      string
	DatabaseURL string
	RabbitHost  string
	RabbitUser  string
	RabbitPass  string
	WorkQueue   string
	ResultQueue string
	ApiPort     int
	HealthPort  int
	LogLevel    string
	NodeLog     bool
	ServerLog   bool
}

func ReadEnvVars() EnvVars {
	// Loading .env file if it exists
	// It will not override already existing env vars
	_ = godotenv.Load()
	return EnvVars{
		Config:      readStringEnvVarOr("CONFIG", "config.json"),
		DatabaseURL: readStringEnvVarOr("DATABASE_URL", ""),
		RabbitHost:  readStringEnvVarOr("RABBIT_HOST", "localhost"),
		RabbitUser:  readStringEnvVarOr("RABBIT_USER", "guest"),
		RabbitPass:  readStringEnvVarOr("RABBIT_PASSWORD", "guest"),
		WorkQueue:   readStringEnvVarOr("WORK_QUEUE", "hits_work"),
		ResultQueue: readStringEnvVarOr("RESULT_QUEUE", "hits_result"),
		ApiPort:     ReadIntEnvVarOr("API_PORT", 8080),
		HealthPort:  ReadIntEnvVarOr("HEALTH_PORT", 0),
		LogLevel:    readStringEnvVarOr("LOG_LEVEL", "info"),
		NodeLog:     readBoolEnvVarOr("NODE_LOG", true),
		ServerLog:   readBoolEnvVarOr("SERVER_LOG", true),
	}
}

// AMQP connection string built from the Rabbit* variables
func (e EnvVars) RabbitURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:5672/", e.RabbitUser, e.RabbitPass, e.RabbitHost)
}

func readStringEnvVar(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("%s not set", name)
	}
	return value, nil
}

func readIntEnvVar(name string) (int, error) {
	valueStr, err := readStringEnvVar(name)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("could not convert %s to a number: %v", name, err)
	}
	return value, nil
}

func readStringEnvVarOr(name string, or string) string {
	value, err := readStringEnvVar(name)
	if err != nil {
		value = or
	}
	return value
}

func ReadIntEnvVarOr(name string, or int) int {
	value, err := readIntEnvVar(name)
	if err != nil {
		value = or
	}
	return value
}

func readBoolEnvVarOr(name string, or bool) bool {
	valueStr, err := readStringEnvVar(name)
	if err != nil {
		return or
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return or
	}
	return value
}
