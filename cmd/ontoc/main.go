// Command ontoc compiles ontology transformation DSL files to Cypher. It
// handles file I/O and argument parsing only; all parsing and generation
// lives in the library packages.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/ontodsl/ontoc"
)

var (
	outputFlag string
	debugFlag  bool
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ontoc <file.dsl>",
		Short:         "Compile ontology transformation DSL to Cypher",
		Long:          "ontoc compiles a declarative transformation pipeline (raw CSV loads,\nnormalization, aggregation, enrichment, derived computations) into an\nordered sequence of Cypher statements for a labeled property graph.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], outputFlag)
		},
	}
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&debugFlag, "debug", false, "Log compile phases to stderr")
	return cmd
}

func run(cmd *cobra.Command, inputPath, outputPath string) error {
	log := logr.Discard()
	if debugFlag {
		log = funcr.New(func(prefix, args string) {
			fmt.Fprintln(os.Stderr, prefix, args)
		}, funcr.Options{Verbosity: 1})
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}
	defer in.Close()

	fmt.Fprintf(os.Stderr, "Parsing %s...\n", inputPath)
	out, err := ontoc.Compile(cmd.Context(), in, ontoc.WithLogger(log))
	if err != nil {
		return fmt.Errorf("compiling %s: %w", inputPath, err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(out+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}
		fmt.Fprintf(os.Stderr, "Written to %s\n", outputPath)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
