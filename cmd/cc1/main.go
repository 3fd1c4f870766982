// Command cc1 is the parser driver: it reads TSTORE/SSTORE produced by cc0
// and parses them into ASTORE and SYMTAB through the node buffer.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/astutil"
	"github.com/cc99/cc99/internal/config"
	"github.com/cc99/cc99/internal/diag"
	"github.com/cc99/cc99/internal/nodebuf"
	"github.com/cc99/cc99/internal/parser"
	"github.com/cc99/cc99/internal/sstore"
	"github.com/cc99/cc99/internal/symtab"
	"github.com/cc99/cc99/internal/tstore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	var optimize bool
	cmd := &cobra.Command{
		Use:           "cc1 <sstore> <tstore> <astore> <symtab>",
		Short:         "Parse TSTORE into ASTORE and SYMTAB",
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], args[2], args[3], cfgPath, optimize)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to cc99.yaml overriding defaults")
	cmd.Flags().BoolVar(&optimize, "fold-constants", false, "run the constant-folding pass over each parsed function body")
	return cmd
}

func run(sstorePath, tstorePath, astorePath, symtabPath, cfgPath string, optimize bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return errors.Wrap(err, "cc1: load config")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	strs, err := sstore.Open(sstorePath)
	if err != nil {
		return errors.Wrap(err, "cc1: open sstore")
	}
	defer strs.Close()

	toks, err := tstore.Open(tstorePath)
	if err != nil {
		return errors.Wrap(err, "cc1: open tstore")
	}
	defer toks.Close()

	asts, err := astore.Init(astorePath)
	if err != nil {
		return errors.Wrap(err, "cc1: init astore")
	}
	defer asts.Close()

	syms, err := symtab.Init(symtabPath)
	if err != nil {
		return errors.Wrap(err, "cc1: init symtab")
	}
	defer syms.Close()

	buf, err := nodebuf.New(cfg.NodeBufferCapacity, asts, syms, log)
	if err != nil {
		return errors.Wrap(err, "cc1: init node buffer")
	}

	sink := diag.New(diag.Config{MaxErrors: cfg.MaxErrors, MaxWarnings: cfg.MaxWarnings, Output: os.Stderr, Logger: log})
	p := parser.New(toks, strs, buf, syms, sink)
	programID, err := p.ParseProgram()
	if err != nil {
		return errors.Wrap(err, "cc1: parse")
	}

	if optimize {
		folded, err := astutil.FoldConstants(buf, programID)
		if err != nil {
			return errors.Wrap(err, "cc1: fold constants")
		}
		log.Infow("constant folding complete", "folded", folded)
	}

	if err := buf.End(); err != nil {
		return errors.Wrap(err, "cc1: flush node buffer")
	}

	sink.PrintSummary()
	if sink.HasErrors() {
		return fmt.Errorf("cc1: %d error(s)", sink.ErrorCount())
	}
	return nil
}
