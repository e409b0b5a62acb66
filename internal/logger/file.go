package logger

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRotatingFile returns a writer that appends to path and rotates it
// once it grows past a few megabytes. Missing directories are created on
// first write.
func NewRotatingFile(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		LocalTime:  true,
		Compress:   true,
		MaxSize:    5, // megabytes
		MaxAge:     14,
		MaxBackups: 3,
	}
}
