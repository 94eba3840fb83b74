package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Tiliavir/enats/internal/config"
)

// New builds a logger writing to stderr, so stdout stays clean for exports.
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	color := cfg.ColorEnabled && isatty.IsTerminal(os.Stderr.Fd())
	return NewWriter(cfg, os.Stderr, color)
}

// NewWriter builds a logger writing to w.
func NewWriter(cfg config.LoggerConfig, w io.Writer, color bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		return nil, fmt.Errorf("logger.level: %w", err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	if color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var enc zapcore.Encoder
	switch cfg.Encoding {
	case "", "console":
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		jsonCfg := zap.NewProductionEncoderConfig()
		jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(jsonCfg)
	default:
		return nil, fmt.Errorf("logger.encoding must be console or json, got %q", cfg.Encoding)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core), nil
}
