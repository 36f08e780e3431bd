package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/comalice/exceptx"
	"github.com/comalice/exceptx/internal/production"
)

const envPrefix = "EXCDEMO"

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "excdemo",
		Short:         "Run the try/catch/finally demonstration cases",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(v, stdout, stderr)
			if err != nil {
				fmt.Fprintln(stderr, color.RedString(err.Error()))
			}
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.String("case", "all", "case to run: all, "+strings.Join(caseNames(), ", "))
	flags.String("kinds", "", "YAML kind table declaring div-by-zero and other")
	flags.String("trace-dir", "", "directory to save one trace per case")
	flags.String("trace-format", "json", "trace format: json or yaml")
	flags.Bool("dot", false, "print each case's trace as Graphviz DOT")
	flags.Bool("no-color", false, "disable colored output")
	flags.BoolP("verbose", "v", false, "log lifecycle events")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	return cmd
}

func run(v *viper.Viper, stdout, stderr io.Writer) error {
	configureColor(v.GetBool("no-color"), stdout)

	logger, err := newLogger(v.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	exceptx.SetLogger(logger)

	kinds, err := loadKinds(v.GetString("kinds"))
	if err != nil {
		return err
	}

	var persister production.Persister
	if dir := v.GetString("trace-dir"); dir != "" {
		persister, err = production.NewPersister(dir, v.GetString("trace-format"))
		if err != nil {
			return err
		}
	}

	selected, err := selectCases(v.GetString("case"))
	if err != nil {
		return err
	}

	d := &demo{
		kinds:     kinds,
		logger:    logger,
		out:       stdout,
		diag:      &diagWriter{w: stderr},
		persister: persister,
		dot:       v.GetBool("dot"),
	}
	for _, c := range selected {
		if err := d.run(c); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}
