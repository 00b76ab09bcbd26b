package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zaqqye/gazetrack_backend/internal/config"
)

func TestInitFilePerLevel(t *testing.T) {
	root := t.TempDir()
	log, err := Init(root, config.LoggingConfig{Directory: "logs", Level: "info", MaxSize: 1})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	log.Debug("hidden")
	log.Info("started")
	log.Error("failed")
	log.DPanic("unexpected state")
	_ = log.Sync()

	read := func(level string) string {
		t.Helper()
		name := filepath.Join(root, "logs", time.Now().Format("2006-01-02")+"-"+level+".log")
		data, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(data)
	}

	info := read("info")
	if !strings.Contains(info, "started") || strings.Contains(info, "failed") {
		t.Errorf("info file = %q", info)
	}
	errs := read("error")
	if !strings.Contains(errs, "failed") || !strings.Contains(errs, "unexpected state") {
		t.Errorf("error file = %q", errs)
	}
	if _, err := os.Stat(filepath.Join(root, "logs", time.Now().Format("2006-01-02")+"-debug.log")); !os.IsNotExist(err) {
		t.Errorf("debug file should not exist below the minimum level, stat err = %v", err)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if _, err := Init(t.TempDir(), config.LoggingConfig{Directory: "logs", Level: "loud"}); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
