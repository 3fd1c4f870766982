// Command cc0 is the lexer driver: it scans a C99 source file into TSTORE,
// interning identifier and literal text into SSTORE.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cc99/cc99/internal/lexer"
	"github.com/cc99/cc99/internal/sstore"
	"github.com/cc99/cc99/internal/tstore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:           "cc0 <source.c> <sstore> <tstore>",
		Short:         "Scan a C99 source file into SSTORE and TSTORE",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], args[2], verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "set the log level to debug")
	return cmd
}

func run(srcPath, sstorePath, tstorePath string, verbose bool) error {
	log := newLogger(verbose)
	defer log.Sync()

	src, err := os.ReadFile(srcPath)
	if err != nil {
		return errors.Wrapf(err, "cc0: read %s", srcPath)
	}

	strs, err := sstore.Init(sstorePath)
	if err != nil {
		return errors.Wrap(err, "cc0: init sstore")
	}
	defer strs.Close()

	toks, err := tstore.Init(tstorePath)
	if err != nil {
		return errors.Wrap(err, "cc0: init tstore")
	}
	defer toks.Close()

	n, err := lexer.Lex(src, srcPath, strs, toks)
	if err != nil {
		return errors.Wrap(err, "cc0: lex")
	}
	log.Infow("lexed source", "file", srcPath, "tokens", n)
	return nil
}

func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
