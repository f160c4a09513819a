package utils

import (
	"os"

	"github.com/charmbracelet/log"
)

var nodeLog = true
var serverLog = true

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Level:           log.InfoLevel,
})

// Enable or disable node and server logs; level is one of
// debug, info, warn, error (unknown values keep the current level)
func InitLog(node, server bool, level string) {
	nodeLog = node
	serverLog = server
	if l, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(l)
	}
}

func ServerLog(msg string, keyvals ...any) {
	if serverLog {
		logger.With("component", "server").Info(msg, keyvals...)
	}
}

func NodeLog(role string, msg string, keyvals ...any) {
	if nodeLog {
		logger.With("component", role).Info(msg, keyvals...)
	}
}

func DebugLog(role string, msg string, keyvals ...any) {
	if nodeLog {
		logger.With("component", role).Debug(msg, keyvals...)
	}
}

func WarnLog(role string, msg string, keyvals ...any) {
	logger.With("component", role).Warn(msg, keyvals...)
}

func ErrorLog(role string, msg string, keyvals ...any) {
	logger.With("component", role).Error(msg, keyvals...)
}
