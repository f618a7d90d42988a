package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
		{"fatal", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := levelFor(tt.in); got != tt.want {
				t.Errorf("levelFor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggingBeforeInit(t *testing.T) {
	Info("planet updated", "planet", "Kamino", "username", "admin")
	Error("broadcast failed", "announcement_id", "announcement_1")
	if Desugar() == nil {
		t.Error("Desugar() = nil before Init")
	}
}
