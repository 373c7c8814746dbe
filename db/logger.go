package db

import (
	"strings"

	"go.uber.org/zap"
)

// El nivell el governa el logger global de zap (core.SetLogLevel el substitueix).
func logger() *zap.SugaredLogger {
	return zap.L().Named("db").Sugar()
}

func logInfof(format string, v ...interface{}) {
	logger().Infof(format, v...)
}

func logErrorf(format string, v ...interface{}) {
	logger().Errorf(format, v...)
}

// gooseLogger adapta goose.Logger al logger de zap del paquet.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger().Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger().Fatalf(strings.TrimSuffix(format, "\n"), v...)
}
