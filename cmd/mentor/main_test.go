package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/mentor/internal/model"
	"github.com/pavelanni/mentor/internal/store"
)

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mentor.db")
	s, err := store.New(path)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	if _, err := s.CreateUser(model.User{Username: "asha", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.AddNote(model.Note{Owner: "asha", Text: "review recursion"}); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	return cmd.Execute()
}

func TestExport(t *testing.T) {
	dbPath := seedDB(t)

	tests := []struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		{"json", json.Unmarshal},
		{"yaml", yaml.Unmarshal},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "export."+tt.format)
			if err := runCLI(t, "export", "--db", dbPath, "--format", tt.format, "--output", out); err != nil {
				t.Fatalf("export: %v", err)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			var got model.LearnerExport
			if err := tt.unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v\n%s", err, data)
			}
			if len(got.Learners) != 1 || got.Learners[0].Username != "asha" {
				t.Fatalf("unexpected learners: %+v", got.Learners)
			}
			if len(got.Learners[0].Notes) != 1 || got.Learners[0].Notes[0].Text != "review recursion" {
				t.Errorf("unexpected notes: %+v", got.Learners[0].Notes)
			}
		})
	}
}

func TestExportUnknownFormat(t *testing.T) {
	dbPath := seedDB(t)
	if err := runCLI(t, "export", "--db", dbPath, "--format", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestAppConfigFromEnv(t *testing.T) {
	t.Setenv("MENTOR_CAPACITY_QUESTIONS", "5")
	t.Setenv("MENTOR_SESSION_TTL", "2h")

	cmd := serveCmd()
	if err := cmd.Flags().Parse([]string{"--region", "Kenya"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg := appConfig(viperForCmd(cmd))

	if cfg.CapacityQuestions != 5 {
		t.Errorf("CapacityQuestions = %d, want 5", cfg.CapacityQuestions)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
	if cfg.Region != "Kenya" {
		t.Errorf("Region = %q, want Kenya", cfg.Region)
	}
	if cfg.FinalQuestions != 25 || cfg.ParseAttempts != 1 || cfg.DefaultLanguage != "en" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestWriteTimeout(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{1, 2*90*time.Second + 30*time.Second},
		{2, 2*90*time.Second + 30*time.Second},
		{4, 4*90*time.Second + 30*time.Second},
	}
	for _, tt := range tests {
		if got := writeTimeout(90*time.Second, tt.attempts); got != tt.want {
			t.Errorf("writeTimeout(90s, %d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}
