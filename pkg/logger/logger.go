package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Level уровень логирования
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel парсит уровень логирования из строки конфига.
// Неизвестный уровень трактуется как info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger простой файловый логгер с уровнями.
// Пишет одновременно в файл и в stdout.
type Logger struct {
	level Level
	out   *log.Logger
	file  *os.File
}

// New создает логгер, пишущий в указанный файл с указанным уровнем.
// Пустое имя файла означает вывод только в stdout.
func New(filename string, level string) (*Logger, error) {
	l := &Logger{level: ParseLevel(level)}

	writers := []io.Writer{os.Stdout}
	if filename != "" {
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return nil, fmt.Errorf("logger: failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logger: failed to open log file: %w", err)
		}
		l.file = f
		writers = append(writers, f)
	}

	l.out = log.New(io.MultiWriter(writers...), "", log.LstdFlags|log.Lmicroseconds)
	return l, nil
}

// Close закрывает файл логов
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Debug пишет сообщение уровня DEBUG
func (l *Logger) Debug(format string, v ...interface{}) {
	l.write(LevelDebug, "DEBUG", format, v...)
}

// Info пишет сообщение уровня INFO
func (l *Logger) Info(format string, v ...interface{}) {
	l.write(LevelInfo, "INFO", format, v...)
}

// Warn пишет сообщение уровня WARN
func (l *Logger) Warn(format string, v ...interface{}) {
	l.write(LevelWarn, "WARN", format, v...)
}

// Error пишет сообщение уровня ERROR
func (l *Logger) Error(format string, v ...interface{}) {
	l.write(LevelError, "ERROR", format, v...)
}

// Fatal пишет сообщение уровня ERROR и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.write(LevelError, "FATAL", format, v...)
	os.Exit(1)
}

func (l *Logger) write(level Level, tag string, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	l.out.Printf("[%s] %s", tag, fmt.Sprintf(format, v...))
}
