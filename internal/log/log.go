package log

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"libris/internal/domain"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(build(zapcore.AddSync(os.Stdout), zapcore.InfoLevel))
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "action",
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
	}
}

func build(ws zapcore.WriteSyncer, lvl zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), ws, lvl)
	return zap.New(core)
}

// Init configures the process logger. An empty file logs to stdout only.
func Init(level, file string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	ws := zapcore.AddSync(os.Stdout)
	if file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		ws = zapcore.NewMultiWriteSyncer(ws, zapcore.AddSync(f))
	}
	current.Store(build(ws, lvl))
	return nil
}

// SetOutput redirects all log lines to w and returns a func restoring the previous logger.
func SetOutput(w io.Writer) func() {
	prev := current.Swap(build(zapcore.AddSync(w), zapcore.DebugLevel))
	return func() { current.Store(prev) }
}

// L exposes the underlying logger for code that runs outside a request.
func L() *zap.Logger { return current.Load() }

func Sync() { _ = current.Load().Sync() }

func requestFields(c *fiber.Ctx) []zap.Field {
	if c == nil {
		return nil
	}
	out := []zap.Field{
		zap.String("ip", c.IP()),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		out = append(out, zap.String("req_id", rid))
	}
	if p, ok := c.Locals("principal").(domain.Principal); ok && p.UserID != "" {
		out = append(out, zap.String("user_id", p.UserID))
	}
	return out
}

func write(lvl zapcore.Level, kind string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	zf := requestFields(c)
	if kind != "" {
		zf = append(zf, zap.String("kind", kind))
	}
	if err != nil {
		zf = append(zf, zap.String("err", err.Error()))
	}
	if len(fields) > 0 {
		zf = append(zf, zap.Any("fields", fields))
	}
	if ce := current.Load().Check(lvl, action); ce != nil {
		ce.Write(zf...)
	}
}

func Debug(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.DebugLevel, "", c, action, nil, fields)
}
func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, "", c, action, nil, fields)
}
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, "audit", c, action, nil, fields)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.WarnLevel, "security", c, action, nil, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zapcore.ErrorLevel, "", c, action, err, fields)
}
