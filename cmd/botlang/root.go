package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/amoghasbhardwaj/botlang/ast"
	"github.com/amoghasbhardwaj/botlang/errs"
	"github.com/amoghasbhardwaj/botlang/ioterm"
	"github.com/amoghasbhardwaj/botlang/lexer"
	"github.com/amoghasbhardwaj/botlang/parser"
	"github.com/amoghasbhardwaj/botlang/recognizer"
	"github.com/amoghasbhardwaj/botlang/session"
)

// config is the layered configuration: flags override a YAML file,
// which overrides these defaults.
type config struct {
	LLM        bool   `koanf:"llm"`
	Debug      bool   `koanf:"debug"`
	Bot        string `koanf:"bot"`
	PluginPath string `koanf:"plugin-path"`
	StoreDSN   string `koanf:"store-dsn"`
	ConfigPath string `koanf:"config"`
}

// NewRootCmd builds the `botlang <script>` CLI surface.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "botlang <script path>",
		Short: "Run a conversational-bot script interactively.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	flags := cmd.Flags()
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	flags.Bool("llm", false, "use the network-backed recognizer plugin instead of the rule-based matcher")
	flags.Bool("debug", false, "enable the debug diagnostic channel")
	flags.String("bot", "", "name of the bot to run, if the script declares more than one")
	flags.String("plugin-path", "", "path to an IntentRecognizer plugin binary (required with --llm)")
	flags.String("store-dsn", "", "Postgres DSN for durable session storage (optional)")
	flags.String("config", "", "path to a YAML config file layered beneath flags")

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config, error) {
	k := koanf.New(".")
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}
	var cfg config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	l := lexer.New(string(source))
	program, err := parser.ParseProgram(l)
	if err != nil {
		if errs.Is(err, errs.Lexical) {
			return fmt.Errorf("lexical error: %w", err)
		}
		return fmt.Errorf("parse error: %w", err)
	}

	bot, err := selectBot(program, cfg.Bot)
	if err != nil {
		return err
	}

	rec, closeRec, err := buildRecognizer(cfg)
	if err != nil {
		return err
	}
	if closeRec != nil {
		defer closeRec()
	}

	term := ioterm.New(os.Stdout, os.Stdin)
	term.Debugging = cfg.Debug

	sess := session.New(bot, term, rec)
	ctx := context.Background()
	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	for !sess.Ended() {
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			break
		}
		if err := sess.Turn(ctx, trimNewline(line)); err != nil {
			term.Debug(err.Error())
		}
		if store != nil {
			snapshot := session.StoredState{
				SessionID: sess.ID(),
				BotName:   bot.Name,
				StateName: sess.Engine.CurrentStateName(),
			}
			if err := store.Save(ctx, snapshot); err != nil {
				term.Debug(fmt.Sprintf("failed to persist session state: %v", err))
			}
		}
	}
	return nil
}

// buildStore opens a durable Store when --store-dsn is set, applying
// pending migrations first. Returns (nil, nil) when no DSN is configured.
func buildStore(ctx context.Context, cfg *config) (*session.Store, error) {
	if cfg.StoreDSN == "" {
		return nil, nil
	}
	if err := session.Migrate("file://migrations", cfg.StoreDSN); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	pool, err := pgxpool.New(ctx, cfg.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}
	return session.NewStore(pool), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func selectBot(program *ast.Program, name string) (*ast.BotDef, error) {
	if len(program.Bots) == 0 {
		return nil, fmt.Errorf("script declares no bots")
	}
	if name == "" {
		return program.Bots[0], nil
	}
	for _, b := range program.Bots {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no bot named %q in script", name)
}

func buildRecognizer(cfg *config) (recognizer.IntentRecognizer, func(), error) {
	if !cfg.LLM {
		return recognizer.NewRuleBased(), nil, nil
	}
	if cfg.PluginPath == "" {
		return nil, nil, fmt.Errorf("--llm requires --plugin-path")
	}
	plug, err := recognizer.DialPlugin(cfg.PluginPath)
	if err != nil {
		return nil, nil, fmt.Errorf("dial recognizer plugin: %w", err)
	}
	return plug, plug.Close, nil
}
