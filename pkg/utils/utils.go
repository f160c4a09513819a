package utils

import (
	"fmt"
	"os"
)

func FailOnError(format string, err error, v ...any) {
	if err != nil {
		logger.Error(fmt.Sprintf(format, v...), "err", err)
		os.Exit(1)
	}
}
