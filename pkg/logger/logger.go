package logger

import (
	"go-inventory-tracker/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Unknown levels fall back to info.
func New(cfg config.LoggerConfig, development bool) *zap.Logger {
	var zapCfg zap.Config
	if development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}
	zapCfg.Level = level

	if cfg.Encoding != "" {
		zapCfg.Encoding = cfg.Encoding
	}
	zapCfg.DisableCaller = cfg.DisableCaller
	zapCfg.DisableStacktrace = cfg.DisableStacktrace
	zapCfg.EncoderConfig.TimeKey = "time"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := zapCfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return l
}

// GormWriter adapts a zap logger to gorm's logger.Writer.
type GormWriter struct {
	sugar *zap.SugaredLogger
}

func NewGormWriter(l *zap.Logger) GormWriter {
	return GormWriter{sugar: l.WithOptions(zap.AddCallerSkip(3)).Sugar().Named("gorm")}
}

func (w GormWriter) Printf(format string, args ...interface{}) {
	w.sugar.Infof(format, args...)
}
