// Command enigma simulates rotor cipher machines.
//
// It reads a machine description (a config file or a built-in preset), then
// converts a stream of setting and message lines from INPUT (default stdin)
// to OUTPUT (default stdout).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pollux/enigma/internal/config"
	"github.com/pollux/enigma/internal/enigma"
	"github.com/pollux/enigma/internal/logger"
	"github.com/pollux/enigma/internal/session"
)

const serviceName = "enigma"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ENIGMA")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "enigma [CONFIG] [INPUT [OUTPUT]]",
		Short: "Encrypt and decrypt messages on a simulated rotor machine",
		Long: `Encrypt and decrypt messages on a simulated rotor machine.

The machine is described by CONFIG (classic text format, or YAML when the
file ends in .yaml/.yml), by --config, or by a built-in --preset. With
--config or --preset the positional arguments are INPUT and OUTPUT only.

Each line of input starting with '*' sets the machine up:

  * B Beta III IV I AXLE (HQ) (EX) (IP) (TR) (BY)

names the reflector and rotors left to right, then the rotor setting, an
optional ring setting and the plugboard cycles. Following lines are
converted and written in groups of five.

EXAMPLES:
  enigma --preset m4 message.txt
  echo "* B I II III AAA
  AAAAA" | enigma -p m3
  ENIGMA_PRESET=m3 ENIGMA_GROUP=0 enigma in.txt out.txt`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnigma(cmd, v, args)
		},
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "Machine description file")
	flags.StringP("preset", "p", "", fmt.Sprintf("Built-in machine %v", config.PresetNames()))
	flags.BoolP("verbose", "v", false, "Log every converted symbol")
	flags.IntP("group", "g", session.GroupSize, "Symbols per output group (0 disables grouping)")
	cobra.CheckErr(v.BindPFlags(flags))

	cmd.AddCommand(newPresetCmd())
	return cmd
}

func newPresetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preset [NAME]",
		Short: "List the built-in machines, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range config.PresetNames() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			cfg, err := config.Preset(args[0])
			if err != nil {
				return err
			}
			data, err := config.MarshalYAML(cfg)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
}

func runEnigma(cmd *cobra.Command, v *viper.Viper, args []string) error {
	ctx := cmd.Context()

	level := logger.LevelInfo
	if v.GetBool("verbose") {
		level = logger.LevelDebug
	}
	log := newLogger(cmd.ErrOrStderr(), level)

	cfg, source, args, err := loadConfig(ctx, v, args)
	if err != nil {
		return err
	}
	if len(args) > 2 {
		return fmt.Errorf("too many arguments: %q", args)
	}

	m, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build machine from %s: %w", source, err)
	}
	log.Info(ctx, "machine loaded",
		"source", source,
		"slots", m.NumRotors(),
		"pawls", m.NumPawls(),
		"rotors", m.Catalog().Len(),
	)

	var in io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = cmd.OutOrStdout()
	var outFile *os.File
	if len(args) > 1 && args[1] != "-" {
		outFile, err = os.Create(args[1])
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer outFile.Close()
		out = outFile
	}

	opts := []session.Option{session.WithGroupSize(v.GetInt("group"))}
	if log.Enabled(ctx, logger.LevelDebug) {
		opts = append(opts, session.WithTrace(func(s enigma.Step) {
			log.Debug(ctx, "symbol converted",
				"settings", s.Settings,
				"input", string(s.Input),
				"plugged", string(s.Plugged),
				"output", string(s.Output),
			)
		}))
	}

	if err := session.NewProcessor(m, log, opts...).Run(ctx, in, out); err != nil {
		return err
	}
	if outFile != nil {
		if err := outFile.Close(); err != nil {
			return fmt.Errorf("failed to close output: %w", err)
		}
	}
	return nil
}

// newLogger returns the CLI logger. Records inside a message carry its id as
// trace_id, and errors are repeated as a one-line event summary.
func newLogger(w io.Writer, level logger.Level) *logger.Logger {
	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			errorAttrs := map[string]any{
				"error_message": r.Message,
				"error_time":    r.Time.UTC().Format(time.RFC3339),
				"trace_id":      session.MessageID(ctx),
			}
			for k, v := range r.Attributes {
				if err, ok := v.(error); ok {
					v = err.Error()
				}
				errorAttrs[k] = v
			}

			errorAttrsJSON, err := json.Marshal(errorAttrs)
			if err != nil {
				fmt.Fprintf(w, "failed to marshal error attributes: %v\n", err)
				return
			}
			fmt.Fprintf(w, "Error event: %s, details: %s\n", r.Message, errorAttrsJSON)
		},
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	metadata := map[string]string{"hostname": hostname}

	return logger.NewWithMetadata(w, level, serviceName, session.MessageID, events, metadata)
}

// loadConfig resolves the machine description and returns the positional
// arguments left for INPUT and OUTPUT.
func loadConfig(ctx context.Context, v *viper.Viper, args []string) (*config.Config, string, []string, error) {
	path, preset := v.GetString("config"), v.GetString("preset")
	switch {
	case path != "" && preset != "":
		return nil, "", nil, fmt.Errorf("%w: --config and --preset are mutually exclusive", enigma.ErrInvalidConfig)

	case preset != "":
		cfg, err := config.Preset(preset)
		return cfg, "preset " + preset, args, err

	case path == "" && len(args) == 0:
		return nil, "", nil, fmt.Errorf("%w: no machine description, pass CONFIG, --config or --preset", enigma.ErrInvalidConfig)

	case path == "":
		path, args = args[0], args[1:]
	}

	cfg, err := config.NewFileLoader(path).Load(ctx)
	return cfg, path, args, err
}
