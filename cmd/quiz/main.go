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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/quiz/internal/handler"
	appI18n "github.com/pavelanni/quiz/internal/i18n"
	"github.com/pavelanni/quiz/internal/llm"
	"github.com/pavelanni/quiz/internal/llm/prompts"
	"github.com/pavelanni/quiz/internal/model"
	"github.com/pavelanni/quiz/internal/questions"
	"github.com/pavelanni/quiz/internal/quiz"
	"github.com/pavelanni/quiz/internal/store"
	"github.com/pavelanni/quiz/internal/terminal"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quiz",
		Short:        "Multiple-choice quiz in the browser or the terminal",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, playCmd(), importCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addBankFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("db", "quiz.db", "SQLite database path")
	f.StringSliceP("questions", "q", nil, "Paths to questions JSON files (repeatable)")
}

func addLogFlags(cmd *cobra.Command, level string) {
	f := cmd.Flags()
	f.String("log-level", level, "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quiz server",
		RunE:  runServe,
	}
	addBankFlags(cmd)
	addLogFlags(cmd, "info")
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "en", "Default UI language (en, ru)")
	f.String("title", "", "Page title (defaults to the translated app title)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /quiz)")
	f.Bool("secure-cookies", true, "Set Secure flag on cookies")
	f.String("llm-url", "", "OpenAI-compatible API base URL for answer explanations (empty disables)")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("explain-variant", string(prompts.VariantBrief), "Explanation prompt variant (brief, detailed)")
	return cmd
}

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		RunE:  runPlay,
	}
	addBankFlags(cmd)
	// Keep the terminal clean unless asked otherwise.
	addLogFlags(cmd, "warn")
	cmd.Flags().StringP("lang", "l", "en", "UI language (en, ru)")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions JSON files into the question bank",
		RunE:  runImport,
	}
	addBankFlags(cmd)
	addLogFlags(cmd, "info")
	cmd.Flags().Bool("replace", false, "Clear the bank before importing")
	_ = cmd.MarkFlagRequired("questions")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the question bank as JSON",
		RunE:  runExport,
	}
	addLogFlags(cmd, "info")
	f := cmd.Flags()
	f.String("db", "quiz.db", "SQLite database path")
	f.String("title", "Quiz", "Title included in the export")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	return cmd
}

func initI18n(lang string) error {
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	if !appI18n.Supported(lang) {
		return fmt.Errorf("unsupported language %q (available: %v)", lang, appI18n.Languages())
	}
	return nil
}

func setupLogging(v *viper.Viper) {
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

// viperForCmd binds a command's flags, .env file and environment to a fresh
// viper instance, then sets up logging from it.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("error reading .env file", "error", err)
	}

	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quiz")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quiz")
	v.AddConfigPath("/etc/quiz")
	configErr := v.ReadInConfig()

	setupLogging(v)
	if configErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(configErr, &notFound) {
			slog.Warn("error reading config file", "error", configErr)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}
	return v
}

// openBank opens the store, imports any question files and seeds the
// built-in table when the bank is still empty.
func openBank(v *viper.Viper) (*store.Store, error) {
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := questions.Import(db, v.GetStringSlice("questions"), false); err != nil {
		db.Close()
		return nil, fmt.Errorf("import questions: %w", err)
	}
	if err := questions.Seed(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newSession(db *store.Store) (*quiz.Session, error) {
	qs, err := questions.Load(db)
	if err != nil {
		return nil, err
	}
	return quiz.NewSession(qs)
}

func normalizeBasePath(p string) string {
	p = strings.TrimRight(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)

	db, err := openBank(v)
	if err != nil {
		return err
	}
	defer db.Close()

	sess, err := newSession(db)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	lang := v.GetString("lang")
	if err := initI18n(lang); err != nil {
		return err
	}

	variant := strings.ToLower(strings.TrimSpace(v.GetString("explain-variant")))
	if !prompts.IsValidVariant(variant) {
		slog.Warn("invalid explain-variant, using brief", "variant", variant)
		variant = string(prompts.VariantBrief)
	}

	var explainer handler.Explainer
	if llmURL := v.GetString("llm-url"); llmURL != "" {
		llmClient, err := llm.New(llmURL, v.GetString("llm-key"), v.GetString("llm-model"), variant)
		if err != nil {
			return fmt.Errorf("create LLM client: %w", err)
		}
		if err := llmClient.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("LLM health check: %w", err)
		}
		slog.Info("LLM endpoint OK", "url", llmURL, "model", v.GetString("llm-model"))
		explainer = llmClient
	}

	basePath := normalizeBasePath(v.GetString("base-path"))
	cfg := model.QuizConfig{
		Title:         v.GetString("title"),
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
	}

	h, err := handler.New(sess, explainer, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		_ = srv.Shutdown(context.Background())
	}()

	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"questions", sess.Total(),
		"base_path", basePath,
		"explanations", explainer != nil,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runPlay(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)

	db, err := openBank(v)
	if err != nil {
		return err
	}
	defer db.Close()

	sess, err := newSession(db)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	lang := v.GetString("lang")
	if err := initI18n(lang); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx = appI18n.WithLocalizer(ctx, appI18n.NewLocalizer(lang))

	err = terminal.Run(ctx, sess, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runImport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	n, err := questions.Import(db, v.GetStringSlice("questions"), v.GetBool("replace"))
	if err != nil {
		return err
	}
	total, err := db.QuestionCount()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d questions, bank now holds %d\n", n, total)
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.Export(v.GetString("title"))
	if err != nil {
		return fmt.Errorf("export questions: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
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
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	slog.Info("exported questions", "count", export.NumQuestions, "output", outPath)
	return nil
}
