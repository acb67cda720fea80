package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ruinedyourlife/tfm-unpacker/swf"
	"github.com/ruinedyourlife/tfm-unpacker/unpacker"
	"github.com/ruinedyourlife/tfm-unpacker/utils"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "tfm-unpacker [flags] <output>",
	Short: "Unpack Transformice SWF file",
	Long: `Rebuilds the real game movie hidden inside the Transformice loader.

The loader splits the movie into DefineBinaryData tags and hides their order
in obfuscated bytecode. The order is recovered and the binaries are written,
concatenated, to <output>. Use "-" to write to stdout.`,
	Example: `
# Download the current loader and unpack it
tfm-unpacker game.swf

# Unpack a local file with info logs
tfm-unpacker -v -i Transformice.swf game.swf

# Read from stdin, write to stdout
cat Transformice.swf | tfm-unpacker -i - - > game.swf
  `,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringP("input", "i", utils.DefaultInput, "The file to unpack: a path, \"-\" for stdin or an url to download")
	rootCmd.Flags().CountP("verbose", "v", "Increase output verbosity. Verbose messages go to stderr")
	rootCmd.Flags().String("marker", unpacker.DefaultMarker, "String written right before each binary name")
	rootCmd.Flags().String("separator", unpacker.DefaultSeparator, "Separator between a symbol prefix and the binary name")
	rootCmd.Flags().String("report", "", "Write a JSON report of the run to this file")
	rootCmd.Flags().String("config", "", "Config file (yaml, json or toml)")
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

func run(cmd *cobra.Command, args []string) error {
	v := utils.NewViper()
	v.Set("output", args[0])
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := utils.LoadConfig(v, cmd.Flags(), configFile)
	if err != nil {
		return err
	}

	logger := utils.InitLogger(utils.LevelFromVerbosity(cfg.Verbose))
	timings := utils.NewTimings()
	report := &utils.Report{Input: cfg.Input, Output: cfg.Output, Timings: timings}
	defer func() {
		if cfg.Report == "" {
			return
		}
		if err := utils.GenerateReport(report, cfg.Report); err != nil {
			logger.Error("failed to generate report", "error", err)
		}
	}()

	logger.Debug("arguments", "input", cfg.Input, "url", cfg.IsURL(), "output", cfg.Output)

	action := "reading file"
	if cfg.IsURL() {
		action = "downloading file"
	}
	data, err := utils.ReadInput(cmd.Context(), cfg, nil, cmd.InOrStdin())
	if err != nil {
		return err
	}
	report.Size = len(data)
	logger.Info(action, "input", cfg.Input, "size", utils.FormatSize(len(data)))
	timings.Mark("Reading file")

	movie, err := swf.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse movie: %w", err)
	}
	timings.Mark("Parsing file")

	u, err := unpacker.New(movie,
		unpacker.WithLogger(logger),
		unpacker.WithMarker(cfg.Marker),
		unpacker.WithSeparator(cfg.Separator),
	)
	if err != nil {
		return fmt.Errorf("invalid movie: %w", err)
	}
	report.Unpacker = u
	if frame1, ok := movie.Frame1(); ok {
		logger.Info("found frame1", "abc", utils.FormatDoABC(frame1))
	}

	logger.Info("resolving order")
	if err := u.ResolveOrder(); err != nil {
		return fmt.Errorf("failed to resolve order: %w", err)
	}
	timings.Mark("Resolving order")
	if len(u.Order) == 0 {
		logger.Error("unable to resolve binaries order, is it already unpacked?")
		return nil
	}
	logger.Info("order", "count", len(u.Order), "names", strings.Join(u.Order, ", "))

	logger.Info("resolving binaries")
	u.ResolveBinaries()
	timings.Mark("Resolving binaries")

	logger.Info("writing to file", "output", cfg.Output)
	written, err := writeOutput(cfg, cmd.OutOrStdout(), u)
	report.Unpacked = written
	var missing *unpacker.MissingBinaryError
	if errors.As(err, &missing) {
		report.Missing = missing.Name
		logger.Error("missing binary", "name", missing.Name)
		return nil
	}
	if err != nil {
		return err
	}
	timings.Mark("Writing file")

	if logger.Enabled(cmd.Context(), slog.LevelDebug) {
		timings.Log(logger)
	}
	return nil
}

// writeOutput writes the binaries to stdout or to the output file. The file
// keeps whatever was written before a missing binary.
func writeOutput(cfg *utils.Config, stdout io.Writer, u *unpacker.Unpacker) (int, error) {
	out := stdout
	if !cfg.IsStdout() {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return 0, fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	cw := &countingWriter{w: out}
	bw := bufio.NewWriter(cw)
	writeErr := u.WriteBinaries(bw)
	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("failed to write output: %w", err)
	}
	return cw.n, writeErr
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
