package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New 根据运行模式构造 zerolog.Logger
// debug 模式使用控制台格式，其余模式输出 JSON
func New(w io.Writer, mode, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if mode == "debug" && level == "" {
		lvl = zerolog.DebugLevel
	}

	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	if mode == "debug" {
		l = l.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	}
	return l
}

// Setup 初始化全局 logger
func Setup(mode, level string) zerolog.Logger {
	l := New(os.Stdout, mode, level)
	log.Logger = l
	zerolog.DefaultContextLogger = &l
	return l
}
