// Command cc3 executes a TAC program: it loads TACSTORE and runs it on the
// three-address-code interpreter.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cc99/cc99/internal/config"
	"github.com/cc99/cc99/internal/tac"
	"github.com/cc99/cc99/internal/vm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	var entryLabel uint16
	var entryFunc string
	cmd := &cobra.Command{
		Use:           "cc3 <tacstore>",
		Short:         "Run a TAC program on the interpreter",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], cfgPath, entryLabel, entryFunc)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to cc99.yaml overriding defaults")
	cmd.Flags().Uint16Var(&entryLabel, "entry-label", 0, "label id to start execution at (0 uses --entry-function or PC 0)")
	cmd.Flags().StringVar(&entryFunc, "entry-function", "", "function name to resolve via the entry-function heuristic")
	return cmd
}

func run(tacPath, cfgPath string, entryLabel uint16, entryFunc string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return errors.Wrap(err, "cc3: load config")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	store, err := tac.Open(tacPath)
	if err != nil {
		return errors.Wrap(err, "cc3: open tacstore")
	}
	defer store.Close()

	code := store.All()
	engine := vm.New(vm.Config{
		NumTemps:     cfg.NumTemps,
		NumVars:      cfg.NumVars,
		HeapBytes:    cfg.VirtualHeapLen,
		MaxCallDepth: cfg.MaxCallDepth,
		MaxSteps:     cfg.MaxSteps,
	}, log)

	if err := engine.Load(code); err != nil {
		return errors.Wrap(err, "cc3: load program")
	}

	switch {
	case entryFunc != "":
		if err := engine.SetEntryFunction(entryFunc); err != nil {
			return errors.Wrap(err, "cc3: resolve entry function")
		}
	case entryLabel != 0:
		if err := engine.SetEntryLabel(entryLabel); err != nil {
			return errors.Wrap(err, "cc3: resolve entry label")
		}
	}

	runErr := engine.Run()
	log.Infow("run complete", "state", engine.State().String(), "steps", engine.StepCount(), "pc", engine.PC())
	if runErr != nil {
		if f := engine.LastFault(); f != nil {
			fmt.Fprintf(os.Stderr, "cc3: fault %s at pc=%d\n", f.Code.String(), f.PC)
		}
		return runErr
	}

	result := engine.GetTemp(0)
	if result.IsFloat {
		fmt.Printf("result: %g\n", result.Float)
	} else {
		fmt.Printf("result: %d\n", result.Int)
	}
	return nil
}
