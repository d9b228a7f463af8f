package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mibwalk/internal/config"
	"mibwalk/internal/logging"
)

var (
	// Global flags
	configPath  string
	logLevel    string
	logFormat   string
	jsonOut     bool
	mibNames    []string
	community   string
	snmpPort    uint16
	snmpVersion string
	timeout     time.Duration
	replayPath  string
	trace       bool

	// Set by setup before any command runs
	cfg     *config.Config
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "mibwalk",
	Short: "Walk, decode and poll SNMP agents",
	Long: `mibwalk walks SNMP agents and decodes what it finds into typed records:
the MIB-2 system group, the interface tables, and vendor tables such as the
Cisco small-business switch port table.

One-off commands talk to a single agent. "poll" runs the configured targets
on a schedule and keeps snapshots in SQLite.

TARGET is either the name of a configured target or an agent address.
With --replay, agents are served from a numeric snmpwalk dump instead.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return setup() },
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&configPath, "config", "c", "", "Config file (default: search $MIBWALK_CONFIG, ./mibwalk.yaml, ~/.config/mibwalk)")
	f.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	f.StringVar(&logFormat, "log-format", "", "Log format: console, json, auto")
	f.BoolVar(&jsonOut, "json", false, "Output in JSON format")
	f.StringSliceVarP(&mibNames, "mib", "m", nil, "MIB modules to load (default from config)")
	f.StringVar(&community, "community", "", "SNMP community")
	f.Uint16VarP(&snmpPort, "port", "p", 0, "SNMP port")
	f.StringVar(&snmpVersion, "snmp-version", "", "SNMP version: 1 or 2c")
	f.DurationVar(&timeout, "timeout", 0, "Request timeout")
	f.StringVar(&replayPath, "replay", "", "Serve agents from an snmpwalk -On dump file")
	f.BoolVar(&trace, "trace", false, "Log every SNMP packet")
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides and installs the logger
func setup() error {
	var err error
	if configPath != "" {
		cfg, cfgPath, err = config.LoadFromPath(configPath)
	} else {
		cfg, cfgPath, err = config.Load()
	}
	if err != nil {
		return err
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}
	_, err = logging.Init("mibwalk", cfg.Log.Level, cfg.Log.Format)
	return err
}

// applyFlags overrides c with the global flags that were set
func applyFlags(c *config.Config) {
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if len(mibNames) > 0 {
		c.MIBs = mibNames
	}
	if community != "" {
		c.SNMP.Community = community
	}
	if snmpPort != 0 {
		c.SNMP.Port = snmpPort
	}
	if snmpVersion != "" {
		c.SNMP.Version = snmpVersion
	}
	if timeout > 0 {
		c.SNMP.Timeout = config.Duration(timeout)
	}
}

// printJSON outputs data as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
