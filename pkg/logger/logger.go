package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Форматы вывода логов
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New создаёт новый логгер с указанным уровнем и форматом
func New(level, format string) (*zap.Logger, error) {
	// Парсим уровень логирования, по умолчанию info
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		newEncoder(format),
		zapcore.AddSync(os.Stdout),
		lvl,
	)

	// Логгер с caller info и stacktrace для ошибок
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// Must создаёт логгер или паникует
func Must(level, format string) *zap.Logger {
	logger, err := New(level, format)
	if err != nil {
		panic(err)
	}
	return logger
}

// newEncoder выбирает encoder в зависимости от формата
func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == FormatConsole {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}
