// Package logging constructs the zap logger the engine and CLI use,
// scaled to the configured debug level and optionally fanned out to a
// rotating file sink under the fingerprints directory.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger for the given debug_level (0, 1, or 2). When dir is
// non-empty, log output additionally fans out to
// "<dir>/wavealarm.log", rotated at 10MB with 3 backups kept.
func New(debugLevel int, dir string) *zap.Logger {
	if debugLevel <= 0 {
		return zap.NewNop()
	}

	level := zapcore.InfoLevel
	if debugLevel >= 2 {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(zapcore.AddSync(os.Stderr)), level)

	cores := []zapcore.Core{consoleCore}
	if dir != "" {
		sink := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "wavealarm.log"),
			MaxSize:    10,
			MaxBackups: 3,
		}
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(sink), level)
		cores = append(cores, fileCore)
	}

	return zap.New(zapcore.NewTee(cores...))
}
