package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"timesheet/config"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		cfg     config.LogConfig
		level   logrus.Level
		json    bool
		wantErr bool
	}{
		{cfg: config.LogConfig{Level: "info", Format: "text"}, level: logrus.InfoLevel},
		{cfg: config.LogConfig{Level: "debug", Format: "json"}, level: logrus.DebugLevel, json: true},
		{cfg: config.LogConfig{Level: "loud", Format: "text"}, wantErr: true},
		{cfg: config.LogConfig{Level: "info", Format: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		log, err := newLogger(tt.cfg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("newLogger(%+v) succeeded, want error", tt.cfg)
			}
			continue
		}
		if err != nil {
			t.Fatalf("newLogger(%+v): %v", tt.cfg, err)
		}
		if log.GetLevel() != tt.level {
			t.Errorf("level = %s, want %s", log.GetLevel(), tt.level)
		}
		if _, isJSON := log.Formatter.(*logrus.JSONFormatter); isJSON != tt.json {
			t.Errorf("json formatter = %v, want %v", isJSON, tt.json)
		}
	}
}

func TestUserAddAndMigrate(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("TIMESHEET_DATABASE_DRIVER", "sqlite")
	t.Setenv("TIMESHEET_DATABASE_URL", filepath.Join(dir, "timesheet.db"))
	t.Setenv("TIMESHEET_LOG_LEVEL", "error")

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(args)
		err := rootCmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	if _, err := run("migrate"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	out, err := run("user", "add", "--username", "carol", "--name", "Carol", "--role", "manager", "--password", "long-enough")
	if err != nil {
		t.Fatalf("user add: %v", err)
	}
	if !strings.Contains(out, `manager "carol"`) {
		t.Errorf("output = %q", out)
	}

	_, err = run("user", "add", "--username", "carol", "--role", "employee", "--password", "long-enough")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("duplicate user add = %v, want already exists", err)
	}
}
