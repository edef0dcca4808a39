package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/randomizer/internal/answerkey"
	"github.com/pavelanni/randomizer/internal/examreader"
	"github.com/pavelanni/randomizer/internal/handler"
	appI18n "github.com/pavelanni/randomizer/internal/i18n"
	"github.com/pavelanni/randomizer/internal/model"
	"github.com/pavelanni/randomizer/internal/shuffle"
	"github.com/pavelanni/randomizer/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "randomizer",
		Short:        "Build shuffled versions of multiple-choice exams",
		SilenceUsage: true,
	}
	root.AddCommand(parseCmd(), shuffleCmd(), keyCmd(), exportCmd(), serveCmd())
	return root
}

func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("format", "f", "auto", "Input format (auto, markup, csv, tsv, xlsx, json)")
	f.StringP("name", "N", "master", "Name of the master exam")
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse an exam file and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	addInputFlags(cmd)
	f := cmd.Flags()
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.StringP("lang", "l", "en", "Language for summaries (en, ar)")
	addCommonFlags(cmd)
	return cmd
}

func shuffleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shuffle FILE",
		Short: "Produce shuffled versions of an exam",
		Args:  cobra.ExactArgs(1),
		RunE:  runShuffle,
	}
	addInputFlags(cmd)
	f := cmd.Flags()
	f.IntP("versions", "n", 0, "Number of versions (0 = numberofvestions from the exam setting, or 1)")
	f.Uint64("seed", 0, "Random seed for reproducible versions (random when unset)")
	f.StringP("output", "o", "-", "Output directory for one JSON file per version (- for stdout)")
	f.String("db", "", "SQLite database path to store the master and its versions")
	f.StringP("lang", "l", "en", "Language for summaries (en, ar)")
	addCommonFlags(cmd)
	return cmd
}

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key FILE",
		Short: "Shuffle an exam and print the answer key of every version",
		Args:  cobra.ExactArgs(1),
		RunE:  runKey,
	}
	addInputFlags(cmd)
	f := cmd.Flags()
	f.IntP("versions", "n", 0, "Number of versions (0 = numberofvestions from the exam setting, or 1)")
	f.Uint64("seed", 0, "Random seed for reproducible versions (random when unset)")
	f.StringP("lang", "l", "en", "Language of the answer key (en, ar)")
	addCommonFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored exam, its versions and answer keys as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "randomizer.db", "SQLite database path")
	f.String("exam-id", "", "ID of the master exam (required)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addCommonFlags(cmd)

	_ = cmd.MarkFlagRequired("exam-id")

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "randomizer.db", "SQLite database path")
	f.StringP("lang", "l", "en", "Default language for text answer keys (en, ar)")
	f.IntP("versions", "n", 0, "Default number of versions per request (0 = exam setting, or 1)")
	f.StringP("name", "N", "master", "Name given to uploaded masters without ?name=")
	f.StringSlice("cors-origins", nil, "Allowed CORS origins (repeatable)")
	addCommonFlags(cmd)
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

	v.SetEnvPrefix("RANDOMIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("randomizer")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/randomizer")
	v.AddConfigPath("/etc/randomizer")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func readInput(v *viper.Viper, path string) (model.Document, error) {
	format, err := examreader.ParseFormat(v.GetString("format"))
	if err != nil {
		return model.Document{}, err
	}
	doc, err := examreader.ReadFile(path, format)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	slog.Info("parsed exam", "path", path, "questions", len(doc.Questions), "setting", doc.Setting != nil)
	return doc, nil
}

func newShuffler(v *viper.Viper) *shuffle.Shuffler {
	if v.IsSet("seed") {
		return shuffle.NewSeeded(v.GetUint64("seed"))
	}
	return shuffle.NewRandom()
}

func localizedContext(lang string) (context.Context, error) {
	if err := appI18n.Init(lang); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}
	return appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer(lang)), nil
}

// openOutput returns stdout for "" or "-", and a created file otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	doc, err := readInput(v, args[0])
	if err != nil {
		return err
	}
	if err := writeJSON(v.GetString("output"), doc); err != nil {
		return err
	}

	ctx, err := localizedContext(v.GetString("lang"))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), appI18n.Tp(ctx, "QuestionsParsed", len(doc.Questions)))
	return nil
}

func runShuffle(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	doc, err := readInput(v, args[0])
	if err != nil {
		return err
	}
	master := model.NewExam(v.GetString("name"), doc)
	versions := newShuffler(v).Versions(master, v.GetInt("versions"), doc.Setting)

	if dbPath := v.GetString("db"); dbPath != "" {
		if err := storeVersions(dbPath, args[0], master, doc.Setting, versions); err != nil {
			return err
		}
	}

	if out := v.GetString("output"); out != "" && out != "-" {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		for i, ver := range versions {
			path := filepath.Join(out, fmt.Sprintf("version-%d.json", i+1))
			if err := writeJSON(path, ver); err != nil {
				return err
			}
			slog.Info("wrote version", "name", ver.Name, "path", path)
		}
	} else if err := writeJSON("-", versions); err != nil {
		return err
	}

	ctx, err := localizedContext(v.GetString("lang"))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), appI18n.Tp(ctx, "VersionsCreated", len(versions)))
	return nil
}

// storeVersions saves the master and its versions. A file whose content was
// already imported reuses the stored master.
func storeVersions(dbPath, srcPath string, master model.Exam, setting *model.ExamSetting, versions []model.Exam) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", srcPath, err)
	}
	hash := sha256sum(data)
	absPath, err := filepath.Abs(srcPath)
	if err != nil {
		absPath = srcPath
	}

	storedHash, masterID, err := db.GetImportedFile(absPath)
	if err != nil {
		return fmt.Errorf("check import status for %s: %w", srcPath, err)
	}
	if storedHash == hash && masterID != "" {
		existing, err := db.GetExam(masterID)
		if err != nil {
			return fmt.Errorf("get exam %s: %w", masterID, err)
		}
		if existing == nil {
			masterID = ""
		} else {
			slog.Info("exam file unchanged, reusing stored master", "path", srcPath, "id", masterID)
		}
	} else {
		if storedHash != "" {
			slog.Info("exam file changed since last import, storing a new master", "path", srcPath)
		}
		masterID = ""
	}

	if masterID == "" {
		masterID, err = db.SaveExam(master, setting, "")
		if err != nil {
			return fmt.Errorf("save master: %w", err)
		}
		if err := db.SetImportedFile(absPath, hash, masterID); err != nil {
			return fmt.Errorf("record import for %s: %w", srcPath, err)
		}
	}

	for _, ver := range versions {
		if _, err := db.SaveExam(ver, nil, masterID); err != nil {
			return fmt.Errorf("save %s: %w", ver.Name, err)
		}
	}
	slog.Info("stored versions", "master", masterID, "count", len(versions))
	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func runKey(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ctx, err := localizedContext(v.GetString("lang"))
	if err != nil {
		return err
	}
	doc, err := readInput(v, args[0])
	if err != nil {
		return err
	}
	master := model.NewExam(v.GetString("name"), doc)
	versions := newShuffler(v).Versions(master, v.GetInt("versions"), doc.Setting)

	w := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(w, "%s\n\n", appI18n.T(ctx, "AppTitle")); err != nil {
		return err
	}
	return answerkey.Render(ctx, w, answerkey.BuildAll(versions))
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	examID := v.GetString("exam-id")
	export, err := db.ExportExam(examID)
	if err != nil {
		return fmt.Errorf("export exam: %w", err)
	}
	if export == nil {
		return fmt.Errorf("exam %s not found", examID)
	}

	exams := make([]model.Exam, len(export.Versions))
	for i, ver := range export.Versions {
		exams[i] = ver.Exam
	}
	export.Keys = answerkey.BuildAll(exams)

	return writeJSON(v.GetString("output"), export)
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	h := handler.New(db, shuffle.NewRandom(), handler.Config{
		DefaultName:     v.GetString("name"),
		DefaultVersions: v.GetInt("versions"),
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if origins := v.GetStringSlice("cors-origins"); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept-Language", "Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"lang", lang,
		"versions", v.GetInt("versions"),
	)
	return http.ListenAndServe(addr, r)
}
