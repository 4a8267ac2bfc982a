// Package commands implements the CLI commands for tidy.
package commands

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/cybergodev/tidy"
	"github.com/cybergodev/tidy/internal/logger"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes follow HTML Tidy: 0 clean, 1 warnings, 2 errors.
const (
	ExitOK       = 0
	ExitWarnings = 1
	ExitErrors   = 2
)

// ExitError carries the process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

type rootOptions struct {
	v *viper.Viper

	optionsFile string
	opts        []string
	indent      bool
	asXHTML     bool
	asXML       bool
	wrap        int
	output      string
	modify      bool
	errorsOnly  bool
	maxSize     string
}

// NewRootCmd builds the command tree with its own settings store.
func NewRootCmd() *cobra.Command {
	ro := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "tidy [flags] [file...]",
		Short: "Clean up and pretty print HTML",
		Long: `tidy repairs HTML documents and writes them back out as HTML,
XHTML or XML.

Files named on the command line are tidied in turn; with no files the
document is read from standard input. Diagnostics go to standard error.

Examples:
  # Indent a page and print it
  tidy -i page.html

  # Convert to XHTML with an XML declaration
  tidy -x --opt add-xml-decl=yes page.html

  # Fix files in place using a tidy option file
  tidy -m -f tidy.conf *.html

  # Only report problems
  tidy -e page.html`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return ro.initConfig(cmd)
		},
		RunE: ro.run,
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "settings file (default $HOME/.tidy.yaml)")
	pf.Bool("debug", false, "enable debug logging")
	pf.BoolP("quiet", "q", false, "suppress nonessential output")
	pf.Bool("json-log", false, "write logs as JSON")
	pf.String("engine", tidy.DefaultConfig().Engine, "tidying engine ("+strings.Join(tidy.Engines(), ", ")+")")
	for _, name := range []string{"config", "debug", "quiet", "json-log", "engine"} {
		_ = ro.v.BindPFlag(strings.ReplaceAll(name, "-", "_"), pf.Lookup(name))
	}

	f := cmd.Flags()
	f.StringVarP(&ro.optionsFile, "options-file", "f", "", "read tidy options from this file")
	f.StringArrayVar(&ro.opts, "opt", nil, "set a tidy option as name=value (repeatable)")
	f.BoolVarP(&ro.indent, "indent", "i", false, "indent element content (indent: auto)")
	f.BoolVarP(&ro.asXHTML, "asxhtml", "x", false, "write XHTML (output-xhtml: yes)")
	f.BoolVar(&ro.asXML, "asxml", false, "write XML (output-xml: yes)")
	f.IntVarP(&ro.wrap, "wrap", "w", 0, "wrap text at this column, 0 disables (wrap)")
	f.StringVarP(&ro.output, "output", "o", "", "write output to this file instead of stdout")
	f.BoolVarP(&ro.modify, "modify", "m", false, "write output back to the input files")
	f.BoolVarP(&ro.errorsOnly, "errors-only", "e", false, "only report problems (markup: no)")
	f.StringVar(&ro.maxSize, "max-size", humanize.IBytes(tidy.DefaultMaxInputSize), "largest accepted input, e.g. 512KB or 10MiB")

	cmd.AddCommand(newOptionsCmd(), newVersionCmd())
	return cmd
}

func (ro *rootOptions) initConfig(cmd *cobra.Command) error {
	v := ro.v
	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".tidy")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TIDY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || v.GetString("config") != "" {
			return &ExitError{Code: ExitErrors, Err: fmt.Errorf("read settings: %w", err)}
		}
	}

	logger.Init(logger.Options{
		Debug:  v.GetBool("debug"),
		Quiet:  v.GetBool("quiet"),
		JSON:   v.GetBool("json_log"),
		Output: cmd.ErrOrStderr(),
	})
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("loaded settings", "file", used)
	}
	return nil
}

// tidyOptions layers the option sources: settings file, option file,
// shortcut flags, then --opt pairs.
func (ro *rootOptions) tidyOptions(cmd *cobra.Command) (tidy.Options, error) {
	opts := tidy.Options{}
	for name, val := range ro.v.GetStringMap("options") {
		opts[name] = val
	}

	if ro.optionsFile != "" {
		fileOpts, err := tidy.LoadConfigFile(ro.optionsFile)
		if err != nil {
			return nil, err
		}
		opts = opts.Merge(fileOpts)
	}

	if ro.indent {
		opts["indent"] = "auto"
	}
	if ro.asXHTML {
		opts["output-xhtml"] = true
	}
	if ro.asXML {
		opts["output-xml"] = true
	}
	if cmd.Flags().Changed("wrap") {
		opts["wrap"] = ro.wrap
	}
	if ro.errorsOnly {
		opts["markup"] = false
	}
	if ro.v.GetBool("quiet") {
		opts["quiet"] = true
	}

	for _, pair := range ro.opts {
		name, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("--opt %q: want name=value", pair)
		}
		opts[strings.TrimSpace(name)] = strings.TrimSpace(val)
	}
	return opts, nil
}

func (ro *rootOptions) run(cmd *cobra.Command, args []string) error {
	if ro.modify && len(args) == 0 {
		return &ExitError{Code: ExitErrors, Err: errors.New("--modify needs at least one file")}
	}
	if ro.modify && ro.output != "" {
		return &ExitError{Code: ExitErrors, Err: errors.New("--modify and --output cannot be combined")}
	}

	opts, err := ro.tidyOptions(cmd)
	if err != nil {
		return &ExitError{Code: ExitErrors, Err: err}
	}

	cfg := tidy.DefaultConfig()
	cfg.Engine = ro.v.GetString("engine")
	cfg.MaxCacheEntries = 0
	if size := strings.TrimSpace(ro.maxSize); size != "" && size != "0" {
		n, err := humanize.ParseBytes(size)
		if err != nil {
			return &ExitError{Code: ExitErrors, Err: fmt.Errorf("--max-size %q: %w", ro.maxSize, err)}
		}
		cfg.MaxInputSize = int(min(n, uint64(math.MaxInt32)))
		logger.Debug("max input size", "bytes", cfg.MaxInputSize)
	}
	p, err := tidy.New(cfg)
	if err != nil {
		return &ExitError{Code: ExitErrors, Err: err}
	}
	defer p.Close()

	var out io.Writer = cmd.OutOrStdout()
	if ro.output != "" {
		file, err := os.Create(ro.output)
		if err != nil {
			return &ExitError{Code: ExitErrors, Err: err}
		}
		defer file.Close()
		out = file
	}

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	code := ExitOK
	for _, name := range inputs {
		c, err := ro.tidyOne(cmd, p, name, opts, out)
		if err != nil {
			return &ExitError{Code: ExitErrors, Err: err}
		}
		code = max(code, c)
	}
	if code != ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

func (ro *rootOptions) tidyOne(cmd *cobra.Command, p *tidy.Processor, name string, opts tidy.Options, out io.Writer) (int, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return ExitErrors, err
	}

	res, err := p.Tidy(string(data), opts)
	if err != nil {
		var te *tidy.Error
		if errors.As(err, &te) && te.Kind == tidy.ParseError {
			fmt.Fprintln(cmd.ErrOrStderr(), strings.TrimRight(te.Message, "\n"))
			return ExitErrors, nil
		}
		return ExitErrors, err
	}

	if res.Report != "" {
		if name != "-" && !ro.v.GetBool("quiet") {
			fmt.Fprintf(cmd.ErrOrStderr(), "Tidy (%s):\n", name)
		}
		fmt.Fprint(cmd.ErrOrStderr(), res.Report)
	}

	if res.Output != "" {
		if ro.modify {
			if err := os.WriteFile(name, []byte(res.Output), 0o644); err != nil {
				return ExitErrors, err
			}
		} else if _, err := io.WriteString(out, res.Output); err != nil {
			return ExitErrors, err
		}
	}

	switch {
	case res.Errors > 0:
		return ExitErrors, nil
	case res.Warnings > 0:
		return ExitWarnings, nil
	}
	return ExitOK, nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return execute(NewRootCmd(), os.Stderr)
}

func execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		if ee.Err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.Err)
		}
		return ee.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitErrors
}
