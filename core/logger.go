package core

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logLevel int

const (
	logSilent logLevel = iota
	logError
	logInfo
	logDebug
)

var (
	logMu        sync.Mutex
	currentLevel                     = logError
	logOutput    zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	logEnv                           = "development"
	sugar                            = zap.NewNop().Sugar()
)

// SetLogLevel configura el nivell (silent|error|info|debug) i substitueix el
// logger global de zap, de manera que el paquet db també el respecta.
func SetLogLevel(levelStr string) {
	logMu.Lock()
	defer logMu.Unlock()
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "silent":
		currentLevel = logSilent
	case "error":
		currentLevel = logError
	case "info", "":
		currentLevel = logInfo
	case "debug":
		currentLevel = logDebug
	default:
		currentLevel = logInfo
	}
	rebuildLogger()
	sugar.Debugf("[log] nivell configurat: %s", strings.ToLower(strings.TrimSpace(levelStr)))
}

// SetLogEnvironment tria l'encoder: consola en desenvolupament, JSON a producció.
func SetLogEnvironment(env string) {
	logMu.Lock()
	defer logMu.Unlock()
	logEnv = strings.ToLower(strings.TrimSpace(env))
	rebuildLogger()
}

// AttachLoggerOutput redirigeix la sortida del logger.
func AttachLoggerOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logOutput = zapcore.Lock(zapcore.AddSync(w))
	rebuildLogger()
}

func rebuildLogger() {
	if currentLevel == logSilent {
		sugar = zap.NewNop().Sugar()
		zap.ReplaceGlobals(zap.NewNop())
		return
	}
	level := zapcore.ErrorLevel
	switch currentLevel {
	case logInfo:
		level = zapcore.InfoLevel
	case logDebug:
		level = zapcore.DebugLevel
	}
	var enc zapcore.Encoder
	if logEnv == "production" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	l := zap.New(zapcore.NewCore(enc, logOutput, level))
	zap.ReplaceGlobals(l)
	sugar = l.Sugar()
}

func logger() *zap.SugaredLogger {
	logMu.Lock()
	defer logMu.Unlock()
	return sugar
}

func Debugf(format string, v ...interface{}) {
	logger().Debugf(format, v...)
}

func Infof(format string, v ...interface{}) {
	logger().Infof(format, v...)
}

func Errorf(format string, v ...interface{}) {
	logger().Errorf(format, v...)
}
