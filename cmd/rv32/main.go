// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/rv32/cpu"
	"github.com/ezrec/rv32/emulator"
	rom "github.com/ezrec/rv32/io"
)

// options are the program loading flags shared by all commands.
type options struct {
	asm     string
	image   string
	size    uint32
	start   uint32
	verbose bool
}

// load builds an emulator from the options, and resets it.
func (opt *options) load() (emu *emulator.Emulator, err error) {
	emu = emulator.NewEmulator(opt.size, opt.start)
	emu.Verbose = opt.verbose

	if len(opt.image) != 0 {
		var inf *os.File
		inf, err = os.Open(opt.image)
		if err != nil {
			return
		}
		defer inf.Close()

		emu.Rom, err = rom.ReadRom(inf)
		if err != nil {
			err = fmt.Errorf("%v: %w", opt.image, err)
			return
		}
	}

	if len(opt.asm) != 0 {
		var inf *os.File
		inf, err = os.Open(opt.asm)
		if err != nil {
			return
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: opt.verbose, Origin: opt.start}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			err = fmt.Errorf("%v: %w", opt.asm, err)
			return
		}
	}

	err = emu.Reset()
	return
}

// newRootCommand builds the rv32 command tree.
func newRootCommand() *cobra.Command {
	opt := &options{}
	var steps int

	var rootCmd = &cobra.Command{
		Use:   "rv32",
		Short: "RV32 instruction decode and execute core",
		Long: `Assembles RV32 programs or loads raw little-endian images,
and executes them on a single hart until an environment call.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opt.asm, "asm", "", "Assembly source file to assemble at the start address")
	flags.StringVar(&opt.image, "image", "", "Raw little-endian image to map at the start address")
	flags.Uint32Var(&opt.size, "size", cpu.DEFAULT_MEMORY_SIZE, "Memory size in bytes")
	flags.Uint32Var(&opt.start, "start", cpu.DEFAULT_START, "Reset address")
	flags.BoolVarP(&opt.verbose, "verbose", "v", false, "Verbose mode")

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a program until an environment call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu, err := opt.load()
			if err != nil {
				return
			}

			done, err := emu.Run(steps)
			fmt.Fprint(cmd.OutOrStdout(), emu.Cpu.String())
			fmt.Fprintf(cmd.OutOrStdout(), "ticks: %d done: %v\n", emu.Ticks(), done)
			return
		},
	}
	runCmd.Flags().IntVar(&steps, "steps", emulator.STEP_LIMIT, "Maximum steps to execute")

	var monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Interactively step a program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu, err := opt.load()
			if err != nil {
				return
			}

			return runMonitor(emu)
		},
	}

	rootCmd.AddCommand(runCmd, monitorCmd)

	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
