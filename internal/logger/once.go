package logger

import (
	"sync"

	"go.uber.org/zap"
)

// onceKeys tracks which keyed messages have already been emitted. Misuse and
// capacity-overflow diagnostics fire every frame if the caller keeps making
// the same mistake; keyed suppression keeps the log readable.
var onceKeys sync.Map

// InfoOnce logs an info message the first time key is seen and suppresses
// all later occurrences of the same key.
func InfoOnce(key, msg string, fields ...zap.Field) {
	if _, seen := onceKeys.LoadOrStore(key, struct{}{}); seen {
		return
	}
	Log.Info(msg, fields...)
}

// WarnOnce logs a warning the first time key is seen and suppresses
// all later occurrences of the same key.
func WarnOnce(key, msg string, fields ...zap.Field) {
	if _, seen := onceKeys.LoadOrStore(key, struct{}{}); seen {
		return
	}
	Log.Warn(msg, fields...)
}

// ResetOnce forgets all suppressed keys. Intended for tests.
func ResetOnce() {
	onceKeys.Range(func(k, _ any) bool {
		onceKeys.Delete(k)
		return true
	})
}
