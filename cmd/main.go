package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"folio/content"
	"folio/epub"
	"folio/ui"
	"folio/utils"
)

// buildLogger prepares the file logger. A TUI owns the terminal, so stderr
// logging is never an option here; with level "off" everything goes to a nop.
func buildLogger(cfg utils.LogConfig) (*zap.Logger, error) {
	if cfg.Level == "" || cfg.Level == "off" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", cfg.Level, err)
	}

	path := cfg.File
	if path == "" {
		dir, err := utils.ConfigDir()
		if err != nil {
			return nil, fmt.Errorf("unable to locate log destination: %w", err)
		}
		path = filepath.Join(dir, "folio.log")
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("expected exactly one book path, got %d arguments", cmd.NArg())
	}
	bookPath := cmd.Args().Get(0)

	cfg, err := utils.LoadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	log, err := buildLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("opening book", zap.String("path", bookPath))

	book, err := loadBook(bookPath, log)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", bookPath, err)
	}

	return ui.Run(book, cfg, log)
}

// loadBook opens the container and builds the content model. Only
// container-level failures are returned; chapter degradations leave
// placeholders in the book and are logged, never fatal.
func loadBook(bookPath string, log *zap.Logger) (*content.Book, error) {
	arc, err := epub.Open(bookPath, log)
	if err != nil {
		return nil, err
	}
	book, err := content.BuildBook(arc.Meta, arc.Chapters, log)
	if err != nil {
		log.Warn("book opened with degraded chapters", zap.Error(err))
	}
	return book, nil
}

func main() {
	app := &cli.Command{
		Name:            "folio",
		Usage:           "read EPUB books in the terminal",
		HideHelpCommand: true,
		Action:          run,
		ArgsUsage:       "BOOK",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (TOML)"},
			&cli.StringFlag{Name: "log-level", Usage: "override log level (debug, info, warn, error, off)"},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "folio: %v\n", err)
		os.Exit(1)
	}
}
