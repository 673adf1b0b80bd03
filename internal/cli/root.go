// Package cli implements the phantasm command line tool.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/tphakala/go-phantom"
)

type app struct {
	configPath string
	insecure   bool
	debug      bool

	client *phantom.Client
	out    io.Writer
}

// NewRootCommand builds the phantasm command tree. Results are written to out
// as indented JSON.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "phantasm",
		Short:         "Drive a Splunk Phantom instance from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.connect(cmd)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML config file (default: environment only)")
	flags.BoolVar(&a.insecure, "insecure", false, "Skip TLS certificate verification")
	flags.BoolVar(&a.debug, "debug", false, "Log every request and response to stderr")

	root.AddCommand(
		a.containerCommand(),
		a.artifactCommand(),
		a.uploadCommand(),
		a.playbookCommand(),
		a.actionCommand(),
		a.demoCommand(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context, out io.Writer) error {
	return NewRootCommand(out).ExecuteContext(ctx)
}

func (a *app) connect(cmd *cobra.Command) error {
	if a.client != nil {
		return nil
	}

	cfg, err := phantom.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})

	opts := []phantom.ClientOption{phantom.WithLogger(phantom.NewSlogLogger(slog.New(handler)))}
	if a.insecure {
		opts = append(opts, phantom.WithInsecureSkipVerify(true))
	}

	client, err := phantom.NewClientFromConfig(cfg, opts...)
	if err != nil {
		return err
	}
	a.client = client
	return nil
}

func (a *app) print(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

type pollView struct {
	Outcome    string          `json:"outcome"`
	Attempts   int             `json:"attempts"`
	LastStatus string          `json:"last_status,omitempty"`
	Payload    phantom.Payload `json:"payload"`
}

// printPoll writes res and turns a timeout into a non-zero exit.
func (a *app) printPoll(res *phantom.PollResult) error {
	view := pollView{
		Outcome:    res.Outcome.String(),
		Attempts:   res.Attempts,
		LastStatus: res.LastStatus,
		Payload:    res.Payload,
	}
	if err := a.print(view); err != nil {
		return err
	}
	return res.Err()
}

type waitFlags struct {
	interval time.Duration
	attempts int
}

func (w *waitFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&w.interval, "interval", 0, "Wait between status polls (default: client setting)")
	cmd.Flags().IntVar(&w.attempts, "attempts", 0, "Maximum number of status polls (default: client setting)")
}

func (w *waitFlags) options(cmd *cobra.Command) []phantom.WaitOption {
	var opts []phantom.WaitOption
	if cmd.Flags().Changed("interval") {
		opts = append(opts, phantom.WithInterval(w.interval))
	}
	if cmd.Flags().Changed("attempts") {
		opts = append(opts, phantom.WithMaxAttempts(w.attempts))
	}
	return opts
}

func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}
