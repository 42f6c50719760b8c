// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.
//
// sonlib-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sonlib-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sonlib-go. If not, see <http://www.gnu.org/licenses/>.

// Package sonlog is the leveled logger the rest of the module logs through,
// replacing the source's process-wide log-level singleton (spec §9 Design
// Notes) with an explicit, package-level configuration set once at start-up.
// It wraps zap the way the teacher's own log package wraps zap under the
// hood, with lumberjack doing file rotation when a file sink is configured.
package sonlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	sugared = newDefault()
)

func newDefault() *zap.SugaredLogger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stderr), zap.InfoLevel)
	return zap.New(core).Sugar()
}

// Configure resets the package logger to write to filePath (rotated via
// lumberjack at maxSizeMB) at the given level. Passing an empty filePath
// keeps logging on stderr.
func Configure(level zapcore.Level, filePath string, maxSizeMB int) {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var sink zapcore.WriteSyncer
	if filePath == "" {
		sink = zapcore.AddSync(os.Stderr)
	} else {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename: filePath,
			MaxSize:  maxSizeMB,
			Compress: true,
		})
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), sink, level)
	mu.Lock()
	sugared = zap.New(core).Sugar()
	mu.Unlock()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugared
}

// Debug logs msg with alternating key/value pairs, e.g. Debug("cache miss", "key", k).
func Debug(msg string, kv ...any) { current().Debugw(msg, kv...) }

// Info logs msg at info level with structured key/value pairs.
func Info(msg string, kv ...any) { current().Infow(msg, kv...) }

// Warn logs msg at warn level with structured key/value pairs.
func Warn(msg string, kv ...any) { current().Warnw(msg, kv...) }

// Error logs msg at error level with structured key/value pairs.
func Error(msg string, kv ...any) { current().Errorw(msg, kv...) }
