// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/db47h/logsim"
	"github.com/db47h/logsim/internal/translate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run <circuit>",
	Short: "Compile and simulate a circuit",
	Long:  "Compile a circuit description, run it for a number of ticks and print the monitored signals.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCircuit,
}

var checkCmd = &cobra.Command{
	Use:   "check <circuit>",
	Short: "Check a circuit description for errors",
	Args:  cobra.ExactArgs(1),
	RunE:  checkCircuit,
}

func init() {
	runCmd.Flags().IntP("cycles", "n", 10, "Number of ticks to simulate")
	runCmd.Flags().StringSlice("set", nil, "Set switch states before running (SW=1,...)")
	runCmd.Flags().StringSlice("monitor", nil, "Additional signals to monitor (DEV or DEV.OUT)")
	runCmd.Flags().StringP("format", "f", "text", "Output format: text, json, yaml or toml")
	runCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	_ = viper.BindPFlag("cycles", runCmd.Flags().Lookup("cycles"))
	_ = viper.BindPFlag("format", runCmd.Flags().Lookup("format"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
}

// compile reads and compiles a circuit file. Compilation errors are reported
// to stderr.
//
func compile(path string) (*logsim.Circuit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := logsim.Compile(path, string(src))
	if err != nil {
		if l, ok := err.(*logsim.ErrorList); ok {
			printReport(os.Stderr, l)
			return nil, errors.Errorf("%s: %d errors", path, len(l.Errs))
		}
		return nil, err
	}
	c.Network.Verbose = viper.GetBool("verbose")
	c.Network.IterationFactor = viper.GetInt("iterations")
	return c, nil
}

func printReport(f *os.File, l *logsim.ErrorList) {
	color := colorize(f)
	for _, d := range l.Errs {
		s := d.Show()
		if color {
			s = strings.Replace(s, d.Class.String()+":", ansiRed+d.Class.String()+":"+ansiReset, 1)
		}
		io.WriteString(f, s)
	}
}

func parseSwitch(s string) (string, bool, error) {
	name, v, ok := strings.Cut(s, "=")
	if !ok {
		return "", false, errors.Errorf("invalid switch setting %q, expected NAME=0|1", s)
	}
	state, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return "", false, errors.Wrapf(err, "switch %s", name)
	}
	return strings.TrimSpace(name), state, nil
}

func runCircuit(cmd *cobra.Command, args []string) error {
	cycles := viper.GetInt("cycles")
	format := viper.GetString("format")
	sets, _ := cmd.Flags().GetStringSlice("set")
	mons, _ := cmd.Flags().GetStringSlice("monitor")
	output, _ := cmd.Flags().GetString("output")

	if cycles < 0 {
		return errors.Errorf("invalid number of cycles: %d", cycles)
	}
	enc, ok := encoders[format]
	if !ok {
		return errors.Errorf("unknown output format %q", format)
	}

	c, err := compile(args[0])
	if err != nil {
		return err
	}
	for _, s := range sets {
		name, state, err := parseSwitch(s)
		if err != nil {
			return err
		}
		if err = c.SetSwitch(name, state); err != nil {
			return err
		}
	}
	for _, m := range mons {
		if err = c.Monitor(m); err != nil {
			return err
		}
	}

	runErr := c.Run(cycles)
	if runErr != nil {
		log.Printf("tick %d: %s", c.Network.Ticks()+1, translate.Error(errors.Cause(runErr)))
	}

	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err = enc(w, newTraceDoc(args[0], c)); err != nil {
		return err
	}
	return runErr
}

func checkCircuit(cmd *cobra.Command, args []string) error {
	c, err := compile(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	ok := "ok"
	if colorize(os.Stdout) {
		ok = ansiGreen + ok + ansiReset
	}
	fmt.Fprintf(w, "%s: %s, %d devices\n", args[0], ok, len(c.DeviceList()))
	if viper.GetBool("verbose") {
		for _, d := range c.DeviceList() {
			fmt.Fprintf(w, "  %-8s %s\n", c.Names.Name(d.ID), d.Kind)
			for _, in := range c.Devices.InputIDs(d) {
				src, _ := c.GetConnectedOutput(d.ID, in)
				fmt.Fprintf(w, "    %s <= %s\n", c.Names.Name(in), c.Devices.SignalName(src.Device, src.Pin))
			}
		}
	}
	mon, unmon := c.Monitors.GetSignalNames()
	fmt.Fprintf(w, "monitored: %s\n", strings.Join(mon, ", "))
	fmt.Fprintf(w, "not monitored: %s\n", strings.Join(unmon, ", "))
	return nil
}
