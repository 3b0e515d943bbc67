// Package command implements the stage-mapper command line.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"stage-mapper/internal/sink"
)

// Version is set at build time with -ldflags "-X stage-mapper/internal/command.Version=...".
var Version = "dev"

// Exit codes.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitDiscarded = 2 // some documents failed and were left out of the output
)

// Dependencies holds everything a command touches outside the process, so
// tests can replace it.
type Dependencies struct {
	Out    io.Writer
	ErrOut io.Writer
	// Connect opens the database used by "flatten --format postgres". The
	// returned func releases it.
	Connect func(ctx context.Context, url string, maxConns int32) (sink.Copier, func(), error)
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	LogLevel  string `name:"log-level" default:"info" env:"STAGE_MAPPER_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" env:"STAGE_MAPPER_LOG_FORMAT" help:"Log format (text, json)"`
	EnvFile   string `name:"env-file" help:"Path to .env file"`

	Check    CheckCmd    `cmd:"" help:"Validate mapping files and print how their arrays expand"`
	Flatten  FlattenCmd  `cmd:"" help:"Map JSON documents to staging table rows"`
	Validate ValidateCmd `cmd:"" help:"Validate JSON documents against a JSON Schema"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

type (
	// CheckCmd defines the check command flags.
	CheckCmd struct {
		Mappings []string `arg:"" type:"existingfile" help:"Mapping files"`
		Format   string   `short:"f" default:"text" enum:"text,json,yaml" help:"Report format (text, json, yaml)"`
		Dump     bool     `help:"Dump the discovered plans"`
	}

	// FlattenCmd defines the flatten command flags.
	FlattenCmd struct {
		Mapping     []string `short:"m" required:"" type:"existingfile" help:"Mapping file (repeatable)"`
		Table       []string `short:"t" help:"Only map these tables (repeatable)"`
		Schema      string   `short:"s" type:"existingfile" help:"JSON Schema every document must satisfy"`
		Format      string   `short:"f" default:"csv" enum:"csv,jsonl,postgres" help:"Output format (csv, jsonl, postgres)"`
		OutDir      string   `short:"o" name:"out-dir" default:"." help:"Directory for csv and jsonl output"`
		Workers     int      `short:"w" default:"0" help:"Documents mapped in parallel (0 = number of CPUs)"`
		DatabaseURL string   `name:"database-url" help:"PostgreSQL URL for --format postgres (default: $DATABASE_URL)"`
		Dump        bool     `help:"Dump row contexts instead of writing output"`
		Documents   []string `arg:"" type:"path" help:"JSON documents or directories of *.json files"`
	}

	// ValidateCmd defines the validate command flags.
	ValidateCmd struct {
		Schema    string   `short:"s" required:"" type:"existingfile" help:"JSON Schema (JSON or YAML)"`
		Documents []string `arg:"" type:"path" help:"JSON documents or directories of *.json files"`
	}

	VersionCmd struct{}
)

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler.
func Run(ctx context.Context, args []string, deps Dependencies) int {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}

	if deps.ErrOut == nil {
		deps.ErrOut = os.Stderr
	}

	if deps.Connect == nil {
		deps.Connect = connectPostgres
	}

	cli := CLI{}
	exitCode := -1

	parser, err := kong.New(&cli,
		kong.Name("stage-mapper"),
		kong.Description("Flatten nested JSON documents into staging table rows."),
		kong.Writers(deps.Out, deps.ErrOut),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	if len(args) == 0 {
		args = []string{"--help"}
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}

	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	loadEnv(cli.EnvFile, deps.ErrOut)

	switch commandName(kctx.Command()) {
	case "check":
		return runCheck(cli, deps)
	case "flatten":
		return runFlatten(ctx, cli, deps)
	case "validate":
		return runValidate(cli, deps)
	case "version":
		fmt.Fprintf(deps.Out, "stage-mapper %s\n", Version)
		return ExitOK
	default:
		return exitWithError(deps.ErrOut, fmt.Errorf("unknown command %q", kctx.Command()))
	}
}

// loadEnv loads the given env file, or .env in the current directory when present.
func loadEnv(path string, errOut io.Writer) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(errOut, "Warning: failed to load env file %s: %v\n", path, err)
		}

		return
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(errOut, "Warning: failed to load .env: %v\n", err)
		}
	}
}

// commandName returns the command word of a kong command path such as "check <mappings>".
func commandName(path string) string {
	name, _, _ := strings.Cut(path, " ")
	return name
}

func exitWithError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "Error: %v\n", err)
	return ExitError
}

func connectPostgres(ctx context.Context, url string, maxConns int32) (sink.Copier, func(), error) {
	pool, err := sink.Connect(ctx, url, maxConns)
	if err != nil {
		return nil, nil, err
	}

	return pool, pool.Close, nil
}
