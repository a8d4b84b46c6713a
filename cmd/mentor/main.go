package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/mentor/internal/assess"
	"github.com/pavelanni/mentor/internal/handler"
	appI18n "github.com/pavelanni/mentor/internal/i18n"
	"github.com/pavelanni/mentor/internal/llm"
	"github.com/pavelanni/mentor/internal/model"
	"github.com/pavelanni/mentor/internal/store"
)

const sessionCleanupInterval = 15 * time.Minute

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mentor",
		Short: "Adaptive learning assistant powered by LLMs",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `mentor --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP learning assistant",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "mentor.db", "SQLite database path")
	f.String("llm-url", "https://openrouter.ai/api/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "", "API key for LLM")
	f.String("llm-model", "deepseek/deepseek-prover-v2:free", "LLM model name")
	f.Duration("llm-timeout", 90*time.Second, "Timeout for a single LLM call")
	f.Bool("llm-check", false, "Check the LLM endpoint at startup")
	f.Int("parse-attempts", 1, "Model queries per question set before giving up on malformed output")
	f.Int("capacity-questions", 15, "Number of capacity test questions")
	f.Int("final-questions", 25, "Number of final exam questions")
	f.Int("final-choice-questions", 7, "Number of multiple choice questions in the final exam")
	f.String("region", "India", "Region the learning path is tailored to")
	f.StringP("lang", "l", "en", "Default UI language (en, ru)")
	f.String("upload-dir", "uploads", "Directory for note attachments")
	f.Duration("session-ttl", 24*time.Hour, "Browser session lifetime")
	f.Bool("secure-cookies", false, "Set Secure flag on session cookies")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export learners and their notes",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "mentor.db", "SQLite database path")
	f.StringP("format", "f", "json", "Output format (json, yaml)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("MENTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("mentor")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/mentor")
	v.AddConfigPath("/etc/mentor")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func appConfig(v *viper.Viper) model.AppConfig {
	return model.AppConfig{
		CapacityQuestions:    v.GetInt("capacity-questions"),
		FinalQuestions:       v.GetInt("final-questions"),
		FinalChoiceQuestions: v.GetInt("final-choice-questions"),
		Region:               v.GetString("region"),
		ParseAttempts:        v.GetInt("parse-attempts"),
		UploadDir:            v.GetString("upload-dir"),
		SessionTTL:           v.GetDuration("session-ttl"),
		SecureCookies:        v.GetBool("secure-cookies"),
		DefaultLanguage:      v.GetString("lang"),
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	cfg := appConfig(v)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	users, err := db.UserCount()
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	slog.Info("database ready", "path", v.GetString("db"), "users", users)

	if err := appI18n.Init(cfg.DefaultLanguage); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	llmTimeout := v.GetDuration("llm-timeout")
	llmClient := llm.New(v.GetString("llm-url"), v.GetString("llm-key"), v.GetString("llm-model"), llmTimeout)
	if v.GetBool("llm-check") {
		if err := llmClient.Ping(context.Background()); err != nil {
			slog.Warn("LLM health check failed, responses will degrade", "url", v.GetString("llm-url"), "error", err)
		} else {
			slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", llmClient.Model())
		}
	}

	h := handler.New(db, assess.NewEngine(llmClient, cfg), cfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(cfg.DefaultLanguage))
	h.Routes(r)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanupSessions(ctx, db)

	addr := v.GetString("addr")
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout(llmTimeout, cfg.ParseAttempts),
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		slog.Info("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("starting server",
		"addr", addr,
		"model", llmClient.Model(),
		"llm_url", v.GetString("llm-url"),
		"lang", cfg.DefaultLanguage,
		"capacity_questions", cfg.CapacityQuestions,
		"final_questions", cfg.FinalQuestions,
		"parse_attempts", cfg.ParseAttempts,
		"region", cfg.Region,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// writeTimeout leaves room for the longest chain of model calls in one request:
// up to parseAttempts calls for a question set, or two for a graded final exam.
func writeTimeout(llmTimeout time.Duration, parseAttempts int) time.Duration {
	return time.Duration(max(parseAttempts, 2))*llmTimeout + 30*time.Second
}

func cleanupSessions(ctx context.Context, db *store.Store) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := db.CleanupExpiredSessions(); err != nil {
				slog.Error("failed to clean up expired sessions", "error", err)
			}
		}
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportLearners()
	if err != nil {
		return fmt.Errorf("export learners: %w", err)
	}

	var data []byte
	switch format := strings.ToLower(v.GetString("format")); format {
	case "json":
		data, err = json.MarshalIndent(export, "", "  ")
		if err == nil {
			// Ensure trailing newline.
			data = append(data, '\n')
		}
	case "yaml":
		data, err = yaml.Marshal(export)
	default:
		return fmt.Errorf("unknown export format %q (want json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("marshal %s: %w", v.GetString("format"), err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	slog.Info("exported learners", "count", len(export.Learners), "output", outPath)
	return nil
}
