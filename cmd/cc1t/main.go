// Command cc1t inspects an already-parsed program: it walks ASTORE via the
// node buffer and reports tree statistics, without re-running the parser.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cc99/cc99/internal/astore"
	"github.com/cc99/cc99/internal/astutil"
	"github.com/cc99/cc99/internal/config"
	"github.com/cc99/cc99/internal/nodebuf"
	"github.com/cc99/cc99/internal/symtab"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	var rootID uint32
	cmd := &cobra.Command{
		Use:           "cc1t <sstore> <astore> <symtab>",
		Short:         "Report tree statistics for an already-parsed program",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], args[2], cfgPath, rootID)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to cc99.yaml overriding defaults")
	cmd.Flags().Uint32Var(&rootID, "root", 1, "ASTORE index of the PROGRAM node to walk")
	return cmd
}

func run(sstorePath, astorePath, symtabPath, cfgPath string, rootID uint32) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return errors.Wrap(err, "cc1t: load config")
	}

	asts, err := astore.Open(astorePath)
	if err != nil {
		return errors.Wrap(err, "cc1t: open astore")
	}
	defer asts.Close()

	syms, err := symtab.Open(symtabPath)
	if err != nil {
		return errors.Wrap(err, "cc1t: open symtab")
	}
	defer syms.Close()

	buf, err := nodebuf.New(cfg.NodeBufferCapacity, asts, syms, nil)
	if err != nil {
		return errors.Wrap(err, "cc1t: init node buffer")
	}

	root, err := buf.GetAST(rootID)
	if err != nil {
		return errors.Wrap(err, "cc1t: read root")
	}
	if root.Kind != astore.KindProgram {
		return fmt.Errorf("cc1t: node %d is not a PROGRAM node (kind %d)", rootID, root.Kind)
	}

	stats, err := astutil.ComputeStats(buf, rootID)
	if err != nil {
		return errors.Wrap(err, "cc1t: walk tree")
	}

	fmt.Printf("nodes=%d max_depth=%d bytes=%d symbols=%d\n",
		stats.NodeCount, stats.MaxDepth, stats.TotalBytes, syms.Count())
	return nil
}
