package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormLoggerTrace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT * FROM subjects", 1 }

	cases := []struct {
		name    string
		begin   time.Time
		err     error
		wantLvl zapcore.Level
		wantMsg string
	}{
		{"query error", time.Now(), errors.New("boom"), zapcore.ErrorLevel, "gorm query failed"},
		{"slow query", time.Now().Add(-time.Second), nil, zapcore.WarnLevel, "gorm slow query"},
		{"normal query", time.Now(), nil, zapcore.DebugLevel, "gorm query"},
		{"not found is not an error", time.Now(), gorm.ErrRecordNotFound, zapcore.DebugLevel, "gorm query"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			l := NewGormLogger(zap.New(core), logger.Info)

			l.Trace(context.Background(), tc.begin, sql, tc.err)

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			if entries[0].Level != tc.wantLvl || entries[0].Message != tc.wantMsg {
				t.Errorf("got %s %q, want %s %q", entries[0].Level, entries[0].Message, tc.wantLvl, tc.wantMsg)
			}
		})
	}
}

func TestGormLoggerSilent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), logger.Info).LogMode(logger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("ignored"))
	l.Error(context.Background(), "ignored too")

	if logs.Len() != 0 {
		t.Errorf("silent logger wrote %d entries", logs.Len())
	}
}
