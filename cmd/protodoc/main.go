// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/protodoc

// protodoc generates a cross-linked protocol reference site from a message schema.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"

	"github.com/woozymasta/protodoc"
)

var (
	Version    = "dev"
	Commit     = "unknown"
	BuildTime  = time.Unix(0, 0)
	URL        = "https://github.com/woozymasta/protodoc"
	_buildTime string
)

// cliOptions describes protodoc CLI flags and subcommands.
type cliOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Enable debug logging" env:"PROTODOC_VERBOSE"`
	NoColor bool `long:"no-color" description:"Disable colored log output" env:"PROTODOC_NO_COLOR"`

	Version  versionCommand  `command:"version" description:"Print version information"`
	Generate generateCommand `command:"generate" description:"Generate reference site from schema"`
	Check    checkCommand    `command:"check" description:"Resolve schema and report problems without writing output"`
	Example  exampleCommand  `command:"example" description:"Print example payload of one message field group"`
	Template templateCommand `command:"template" description:"Print built-in page template"`
}

// renderFlags groups site rendering flags.
type renderFlags struct {
	Format      string `short:"f" long:"format" description:"Output format" choice:"html" choice:"markdown" default:"html" env:"PROTODOC_FORMAT"`
	Title       string `short:"T" long:"title" description:"Site title (defaults to schema title)"`
	TemplateDir string `short:"t" long:"template-dir" description:"Directory with <kind>.gotmpl files overriding built-in templates" env:"PROTODOC_TEMPLATE_DIR"`
	Jobs        int    `short:"j" long:"jobs" description:"Concurrent page renderers (0 uses all CPUs)" default:"0" env:"PROTODOC_JOBS"`
	WrapWidth   int    `short:"w" long:"wrap" description:"Wrap width for plain markdown descriptions" default:"80"`
}

// exampleFlags groups example payload flags.
type exampleFlags struct {
	Mode   string `short:"m" long:"example-mode" description:"Example field coverage (empty disables examples on pages)" choice:"all" choice:"required"`
	Format string `short:"e" long:"example-format" description:"Example payload encoding" choice:"json" choice:"yaml" default:"json"`
}

// generateCommand renders the whole site into an output directory.
type generateCommand struct {
	runner *cliRunner
	Args   struct {
		Schema string `positional-arg-name:"schema" description:"Schema file path (YAML or JSON)" required:"yes"`
		Output string `positional-arg-name:"output" description:"Output directory (default: output)"`
	} `positional-args:"yes"`

	RenderFlags  renderFlags  `group:"Render"`
	ExampleFlags exampleFlags `group:"Examples"`
}

// Execute runs generate subcommand.
func (command *generateCommand) Execute(_ []string) error {
	return command.runner.runGenerate(command.Args.Schema, command.Args.Output, protodoc.Options{
		Format:        protodoc.Format(command.RenderFlags.Format),
		Title:         command.RenderFlags.Title,
		TemplateDir:   command.RenderFlags.TemplateDir,
		Jobs:          command.RenderFlags.Jobs,
		WrapWidth:     command.RenderFlags.WrapWidth,
		ExampleMode:   protodoc.ExampleMode(command.ExampleFlags.Mode),
		ExampleFormat: protodoc.ExampleFormat(command.ExampleFlags.Format),
	})
}

// checkCommand resolves schema without rendering.
type checkCommand struct {
	runner *cliRunner
	Args   struct {
		Schema string `positional-arg-name:"schema" description:"Schema file path (optional; stdin when omitted)"`
	} `positional-args:"yes"`
}

// Execute runs check subcommand.
func (command *checkCommand) Execute(_ []string) error {
	return command.runner.runCheck(command.Args.Schema)
}

// exampleCommand prints example payload of one message.
type exampleCommand struct {
	runner *cliRunner
	Args   struct {
		Schema  string `positional-arg-name:"schema" description:"Schema file path" required:"yes"`
		Message string `positional-arg-name:"message" description:"Message as type/subtype/direction" required:"yes"`
	} `positional-args:"yes"`

	Group  string `short:"g" long:"group" description:"Field group" choice:"args" choice:"data" default:"data"`
	Mode   string `short:"m" long:"mode" description:"Field coverage" choice:"all" choice:"required" default:"all"`
	Format string `short:"e" long:"format" description:"Payload encoding" choice:"json" choice:"yaml" default:"json"`
}

// Execute runs example subcommand.
func (command *exampleCommand) Execute(_ []string) error {
	return command.runner.runExample(
		command.Args.Schema,
		command.Args.Message,
		protodoc.FieldGroupName(command.Group),
		protodoc.ExampleMode(command.Mode),
		protodoc.ExampleFormat(command.Format),
	)
}

// templateCommand exports built-in page template.
type templateCommand struct {
	runner *cliRunner
	Args   struct {
		Output string `positional-arg-name:"output" description:"Output template file path (optional; stdout when omitted)"`
	} `positional-args:"yes"`

	Name string `short:"n" long:"name" description:"Built-in template as <format>/<kind>" default:"html/message"`
	List bool   `short:"l" long:"list" description:"List built-in template names"`
}

// Execute runs template subcommand.
func (command *templateCommand) Execute(_ []string) error {
	if command.List {
		return command.runner.runTemplateList()
	}

	return command.runner.runTemplate(command.Name, command.Args.Output)
}

// versionCommand prints version information.
type versionCommand struct {
	runner *cliRunner
}

// Execute runs version subcommand.
func (command *versionCommand) Execute(_ []string) error {
	command.runner.printVersionInfo()
	return nil
}

// cliRunner executes CLI operations with custom IO streams.
type cliRunner struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	options     *cliOptions
	programName string
}

func init() {
	if _buildTime != "" {
		if t, err := time.Parse(time.RFC3339, _buildTime); err == nil {
			BuildTime = t.UTC()
		}
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes CLI logic and returns process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	return runWithIO(args, os.Stdin, stdout, stderr)
}

// runWithIO executes CLI logic with custom stdin, for tests.
func runWithIO(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	programName := strings.TrimSpace(os.Args[0])
	if programName == "" {
		programName = "protodoc"
	}

	runner := cliRunner{
		programName: filepath.Base(programName),
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
	}

	return runner.run(args)
}

// run parses CLI args and maps errors to process exit codes.
func (runner *cliRunner) run(args []string) int {
	err := parseCLIArgs(args, runner)
	if err == nil {
		return 0
	}

	var flagErr *flags.Error
	if errors.As(err, &flagErr) {
		if flagErr.Type == flags.ErrHelp {
			writeCLIError(runner.stdout, err)
			return 0
		}

		writeCLIError(runner.stderr, err)
		return 2
	}

	writeCLIError(runner.stderr, err)
	return 1
}

// context builds command context carrying a tint logger on stderr.
func (runner *cliRunner) context() context.Context {
	level := slog.LevelInfo
	noColor := true
	if runner.options != nil {
		if runner.options.Verbose {
			level = slog.LevelDebug
		}

		noColor = runner.options.NoColor || runner.stderr != os.Stderr
	}

	handler := tint.NewHandler(runner.stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})

	logger := slog.New(slogctx.NewHandler(handler, nil))
	return slogctx.NewCtx(context.Background(), logger)
}

// runGenerate resolves schema file and writes the rendered site.
func (runner *cliRunner) runGenerate(schemaPath, outputDir string, opt protodoc.Options) error {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		outputDir = "output"
	}

	ctx := runner.context()
	slogctx.Debug(ctx, "generating site", slog.String("schema", schemaPath), slog.String("output", outputDir))

	if _, err := protodoc.GenerateFile(ctx, schemaPath, outputDir, opt); err != nil {
		return fmt.Errorf("generate site: %w", err)
	}

	return nil
}

// runCheck resolves schema from file or stdin and prints a summary line.
func (runner *cliRunner) runCheck(schemaPath string) error {
	data, sourcePath, err := runner.readSchemaInput(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema input: %w", err)
	}

	schema, err := protodoc.ParseAndResolve(data)
	if err != nil {
		return fmt.Errorf("check %s: %w", sourcePath, err)
	}

	messages := 0
	for range schema.AllMessages() {
		messages++
	}

	_, err = fmt.Fprintf(runner.stdout, "%s: ok (%d messages, %d models, %d concepts)\n",
		sourcePath, messages, len(schema.Models), len(schema.Concepts))
	return err
}

// runExample prints example payload of one message field group.
func (runner *cliRunner) runExample(schemaPath, message string, group protodoc.FieldGroupName, mode protodoc.ExampleMode, format protodoc.ExampleFormat) error {
	schema, err := protodoc.ResolveFile(schemaPath)
	if err != nil {
		return fmt.Errorf("resolve schema: %w", err)
	}

	id, err := protodoc.ParseMessageID(message)
	if err != nil {
		return err
	}

	payload, err := protodoc.GenerateExample(schema, id, group, mode, format)
	if err != nil {
		return fmt.Errorf("generate example: %w", err)
	}

	if _, err := runner.stdout.Write(payload); err != nil {
		return fmt.Errorf("write example to stdout: %w", err)
	}

	return nil
}

// runTemplate writes selected built-in template to stdout or file.
func (runner *cliRunner) runTemplate(templateName, outputPath string) error {
	tpl, err := protodoc.BuiltinTemplate(templateName)
	if err != nil {
		return fmt.Errorf("load built-in template %q: %w", templateName, err)
	}

	if strings.TrimSpace(outputPath) == "" {
		if _, err := io.WriteString(runner.stdout, tpl); err != nil {
			return fmt.Errorf("write template to stdout: %w", err)
		}

		return nil
	}

	if err := os.WriteFile(outputPath, []byte(tpl), 0o600); err != nil {
		return fmt.Errorf("write template file %q: %w", outputPath, err)
	}

	return nil
}

// runTemplateList prints built-in template names one per line.
func (runner *cliRunner) runTemplateList() error {
	for _, name := range protodoc.BuiltinTemplateNames() {
		if _, err := fmt.Fprintln(runner.stdout, name); err != nil {
			return err
		}
	}

	return nil
}

// readSchemaInput reads schema from file path or stdin and returns source marker.
func (runner *cliRunner) readSchemaInput(path string) ([]byte, string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read schema file %q: %w", path, err)
		}

		return data, path, nil
	}

	data, err := io.ReadAll(runner.stdin)
	if err != nil {
		return nil, "", fmt.Errorf("read schema from stdin: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, "", errors.New("read schema from stdin: empty input")
	}

	return data, "(stdin)", nil
}

// writeCLIError writes a plain-text CLI error line to the selected stream.
func writeCLIError(output io.Writer, err error) {
	if err == nil {
		return
	}

	//nolint:gosec // CLI writes plain-text diagnostics to terminal streams, not HTTP responses.
	_, _ = fmt.Fprintln(output, err.Error())
}

// parseCLIArgs parses CLI arguments and triggers selected subcommand execution.
func parseCLIArgs(args []string, runner *cliRunner) error {
	options := &cliOptions{}
	runner.options = options
	options.Version.runner = runner
	options.Generate.runner = runner
	options.Check.runner = runner
	options.Example.runner = runner
	options.Template.runner = runner

	parser := flags.NewParser(options, flags.HelpFlag)
	parser.Name = runner.programName
	applyCommandLongDescriptions(parser, runner.programName)

	_, err := parser.ParseArgs(args)
	return err
}

// applyCommandLongDescriptions configures detailed command help text with examples.
func applyCommandLongDescriptions(parser *flags.Parser, programName string) {
	descriptions := map[string]string{
		"generate": strings.TrimSpace(fmt.Sprintf(`
Resolve schema and render index, message, model and concept pages.
Nothing is written unless every reference resolves and every page renders.

Examples:
> $ %s generate schema/v2.yaml output
> $ %s generate -f markdown -m required -e yaml schema/v2.yaml docs
`, programName, programName)),
		"check": strings.TrimSpace(fmt.Sprintf(`
Resolve schema and report the first problem: missing shared field,
unresolvable or ambiguous reply/subscribe target, unknown model.

Examples:
> $ %s check schema/v2.yaml
> $ cat schema/v2.yaml | %s check
`, programName, programName)),
		"example": strings.TrimSpace(fmt.Sprintf(`
Print example payload of a message field group.
Model types are expanded; recursive models stop at first repetition.

Examples:
> $ %s example schema/v2.yaml chat/send/toapp
> $ %s example -g args -m required -e yaml schema/v2.yaml chat/ack/fromapp
`, programName, programName)),
		"template": strings.TrimSpace(fmt.Sprintf(`
Print built-in page template text (<format>/<kind>).
Save it as <kind>.gotmpl in a directory passed to generate --template-dir.

Examples:
> $ %s template --list
> $ %s template -n markdown/message templates/message.gotmpl
`, programName, programName)),
	}

	for commandName, description := range descriptions {
		command := parser.Find(commandName)
		if command == nil {
			continue
		}

		command.LongDescription = description
	}
}

func (runner *cliRunner) printVersionInfo() {
	_, _ = fmt.Fprintf(runner.stdout, `url:      %s
file:     %s
version:  %s
commit:   %s
built:    %s
`, URL, os.Args[0], Version, Commit, BuildTime)
}
