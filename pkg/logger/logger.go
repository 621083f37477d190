package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type MainLogHook struct{}

func (h *MainLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Main: " + entry.Message
	return nil
}

func (h *MainLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// FileConfig enables a rotating log file next to stdout.
type FileConfig struct {
	Path       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
)

// SetFileOutput makes every logger created afterwards write to stdout and to
// the rotating file described by cfg. An empty path keeps stdout only.
func SetFileOutput(cfg FileConfig) {
	mu.Lock()
	defer mu.Unlock()

	if cfg.Path == "" {
		output = os.Stdout
		return
	}

	output = io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
}

func NewLogger(lvl string, hook logrus.Hook) *logrus.Entry {
	l := logrus.New()

	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		level = logrus.DebugLevel
	}
	l.SetLevel(level)

	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	mu.RLock()
	l.SetOutput(output)
	mu.RUnlock()

	if hook != nil {
		l.AddHook(hook)
	}

	return logrus.NewEntry(l)
}
