package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/hammamikhairi/recipebot/internal/config"
	"github.com/hammamikhairi/recipebot/internal/display"
	"github.com/hammamikhairi/recipebot/internal/domain"
	"github.com/hammamikhairi/recipebot/internal/logger"
	"github.com/hammamikhairi/recipebot/internal/pipeline"
	"github.com/hammamikhairi/recipebot/internal/speech"
	"github.com/hammamikhairi/recipebot/internal/spoonacular"
	"github.com/hammamikhairi/recipebot/internal/storage"
)

// newCLIApp creates the CLI application. Printed results go to out.
func newCLIApp(out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "recipebot",
		Usage:   "Search recipes and their instructions, by keyboard or voice",
		Version: Version,
		Writer:  out,
		Flags:   globalFlags(),
		Action:  runTUI,
		Commands: []*cli.Command{
			tuiCmd(),
			searchCmd(out),
			savedCmd(out),
		},
	}
	// Errors are returned to main, which prints them.
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "verbose", Usage: "enable verbose/debug logging"},
		&cli.BoolFlag{Name: "quiet", Usage: "disable all logging"},
		&cli.StringFlag{Name: "log-file", Usage: `file to write logs to ("stderr" logs to the console)`},
		&cli.StringFlag{Name: "store", Usage: "cache backend: sqlite|redis|memory"},
		&cli.StringFlag{Name: "data-dir", Usage: "directory for the database and logs"},
		&cli.BoolFlag{Name: "voice", Usage: "enable voice input via local whisper.cpp"},
		&cli.StringFlag{Name: "whisper-bin", Usage: "path to the whisper.cpp CLI binary"},
		&cli.StringFlag{Name: "whisper-model", Usage: "path to the whisper GGML model file"},
		&cli.DurationFlag{Name: "max-listen", Usage: "longest voice capture before it stops on its own"},
		&cli.BoolFlag{Name: "no-chime", Usage: "disable the listening start/stop tones"},
		&cli.StringFlag{Name: "locale", Usage: "speech locale, e.g. en-US"},
	}
}

// applyFlags overrides cfg with flags the user set explicitly.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.IsSet("store") {
		cfg.Store = c.String("store")
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("voice") {
		cfg.Voice.Enabled = c.Bool("voice")
	}
	if c.IsSet("whisper-bin") {
		cfg.Voice.WhisperBin = c.String("whisper-bin")
	}
	if c.IsSet("whisper-model") {
		cfg.Voice.WhisperModel = c.String("whisper-model")
	}
	if c.IsSet("max-listen") {
		cfg.Voice.MaxListen = c.Duration("max-listen")
	}
	if c.Bool("no-chime") {
		cfg.Voice.Chime = false
	}
	if c.IsSet("locale") {
		cfg.Voice.Locale = c.String("locale")
	}
	if c.Bool("verbose") {
		cfg.LogLevel = logger.LevelVerbose.String()
	}
	if c.Bool("quiet") {
		cfg.LogLevel = logger.LevelOff.String()
	}
}

// app holds the wired components shared by every command.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	agg     *pipeline.Aggregator
	closers []io.Closer
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

// setup loads configuration and wires logging, the cache and the
// pipeline. offline commands do not need an API key.
func setup(c *cli.Context, offline bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyFlags(c, cfg)

	validate := cfg.Validate
	if offline {
		validate = cfg.ValidateLocal
	}
	if err := validate(); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	// Logs go to a file by default so the screen stays clean.
	var logOut io.Writer = os.Stderr
	if path := cfg.LogPath(); path != "" {
		f := logger.NewRotatingFile(path)
		a.closers = append(a.closers, f)
		logOut = f
	}

	// Third-party libs like the whisper transcriber log through the
	// standard log package.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	a.log = logger.New(level, logOut)

	kv, err := openStore(cfg, a.log.Named("store"))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, kv)

	cache := storage.NewRecipeCache(kv, a.log.Named("cache"))
	clientOpts := []spoonacular.Option{spoonacular.WithBaseURL(cfg.BaseURL)}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, spoonacular.WithHTTPTimeout(cfg.Timeout))
	}
	client := spoonacular.NewClient(cfg.APIKey, a.log.Named("spoonacular"), clientOpts...)
	a.agg = pipeline.New(client, cache, a.log.Named("pipeline"))

	a.log.Info("recipebot %s starting (store=%s)", Version, cfg.Store)
	return a, nil
}

func openStore(cfg *config.Config, log *logger.Logger) (storage.KV, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return storage.NewMemoryKV(log), nil
	case config.StoreRedis:
		return storage.NewRedisKV(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, log), nil
	default:
		kv, err := storage.OpenSQLite(cfg.DBPath(), log)
		if err != nil {
			return nil, domain.PersistenceError("store.open", err)
		}
		return kv, nil
	}
}

// tuiCmd creates the tui command, which is also the default action.
func tuiCmd() *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive recipe screen (default)",
		Action: runTUI,
	}
}

func runTUI(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}

	a, err := setup(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	var opts []display.Option
	if a.cfg.Voice.Enabled {
		v := newVoice(a.cfg, a.log.Named("voice"))
		defer v.Destroy()
		opts = append(opts, display.WithVoice(v, a.cfg.Voice.Locale))
	}

	model := display.New(ctx, a.agg, a.log.Named("display"), opts...)

	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if m, ok := final.(display.Model); ok {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// newVoice builds the voice adapter. A missing whisper binary or model
// is reported now but only fails when the user starts listening.
func newVoice(cfg *config.Config, log *logger.Logger) *speech.Voice {
	eng := speech.NewWhisperEngine(cfg.Voice.WhisperBin, cfg.Voice.WhisperModel, log.Named("whisper"),
		speech.WithTempDir(filepath.Join(cfg.DataDir, "stt")),
	)
	if err := eng.Check(); err != nil {
		log.Warn("voice input will fail: %v", err)
	}

	opts := []speech.Option{speech.WithMaxListen(cfg.Voice.MaxListen)}
	if cfg.Voice.Chime {
		player, err := speech.NewPlayer(log.Named("audio"))
		if err != nil {
			log.Warn("audio device unavailable, chime disabled: %v", err)
		} else {
			opts = append(opts, speech.WithCue(speech.NewChime(player, log.Named("chime"))))
		}
	}

	log.Info("voice input enabled (bin=%s, model=%s, locale=%s)",
		cfg.Voice.WhisperBin, cfg.Voice.WhisperModel, cfg.Voice.Locale)
	return speech.New(eng, log, opts...)
}

// searchCmd creates the search command.
func searchCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search once, print the recipes and save them",
		ArgsUsage: "<query...>",
		Action: func(c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")

			a, err := setup(c, false)
			if err != nil {
				return err
			}
			defer a.Close()

			recipes, err := a.agg.Search(c.Context, query)
			if err != nil {
				if domain.IsKind(err, domain.KindValidation) {
					return errors.New(display.AlertEmptyQuery)
				}
				return err
			}

			printRecipes(out, recipes)
			return nil
		},
	}
}

// savedCmd creates the saved command.
func savedCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "Print the recipes saved by the last search",
		Action: func(c *cli.Context) error {
			a, err := setup(c, true)
			if err != nil {
				return err
			}
			defer a.Close()

			recipes, ok := a.agg.LoadSaved(c.Context)
			if !ok {
				fmt.Fprintln(out, "no saved recipes")
				return nil
			}
			printRecipes(out, recipes)
			return nil
		},
	}
}

func printRecipes(out io.Writer, recipes []domain.HydratedRecipe) {
	if len(recipes) == 0 {
		fmt.Fprintln(out, "no recipes found")
		return
	}
	fmt.Fprint(out, display.RenderRecipes(recipes, display.TermWidth()))
}
