// cmd/shareable/main.go
//
// shareable - interactive shell over a persistent B*-tree dictionary.
//
// Usage:
//
//	shareable [--config file] [--capacity n]
//	shareable demo [--count n]
//
// Use .help inside the shell for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shareable/pkg/cli"
	"shareable/pkg/config"
	"shareable/pkg/logutil"
	"shareable/pkg/shareable"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shareable",
		Short: "Interactive shell over a persistent B*-tree dictionary",
		Run:   runShell,
	}
	addFlags(rootCmd)
	rootCmd.AddCommand(newDemoCommand())

	rootCmd.SetOutput(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		rootCmd.Println(err)
		os.Exit(1)
	}
}

func addFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "", "", "config file")
	cmd.PersistentFlags().IntP("capacity", "", shareable.DefaultCapacity, "bucket capacity, even and at least 6")
	cmd.PersistentFlags().StringP("log-level", "L", "info", "log level: debug, info, warn, error, fatal (default 'info')")
	cmd.PersistentFlags().StringP("log-file", "", "", "log file path")
}

func newDemoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build a tree of integers and print every entry with its position",
		Run:   runDemo,
	}
	cmd.Flags().IntP("count", "n", 20, "number of entries")
	return cmd
}

// setup loads the configuration and installs the logger.
func setup(cmd *cobra.Command) *config.Config {
	cfg := config.Default()
	if err := cfg.Parse(cmd.Flags()); err != nil {
		cmd.Println(err)
		os.Exit(1)
	}
	if _, err := logutil.SetupLogger(cfg.Log); err != nil {
		cmd.Println(err)
		os.Exit(1)
	}
	for _, msg := range cfg.WarningMsgs {
		log.Warn(msg)
	}
	return cfg
}

func runShell(cmd *cobra.Command, _ []string) {
	cfg := setup(cmd)
	defer logutil.LogPanic()

	log.Info("starting shell", zap.Int("capacity", cfg.Capacity), zap.Int("history", cfg.History))
	repl := cli.NewREPL(os.Stdout, os.Stderr, cli.Options{
		Capacity: cfg.Capacity,
		History:  cfg.History,
		Prompt:   cfg.Prompt,
		Logger:   log.L(),
	})
	repl.Run()
}

func runDemo(cmd *cobra.Command, _ []string) {
	cfg := setup(cmd)
	defer logutil.LogPanic()

	n, err := cmd.Flags().GetInt("count")
	if err != nil {
		cmd.Println(err)
		os.Exit(1)
	}

	d := shareable.New[int, int](shareable.WithCapacity(cfg.Capacity))
	for i := 1; i <= n; i++ {
		d = d.Add(i, i*i)
	}
	if err := d.Verify(); err != nil {
		log.Fatal("tree is broken", zap.Error(err))
	}

	for b := d.First(); b != nil; b = b.Next() {
		fmt.Printf("%6d %10d %6d\n", b.Key(), b.Value(), b.Position())
	}
	s := d.Stats()
	log.Info("demo finished",
		zap.Int("count", s.Count),
		zap.Int("height", s.Height),
		zap.Int("leaves", s.Leaves),
		zap.Int("inners", s.Inners))
}
