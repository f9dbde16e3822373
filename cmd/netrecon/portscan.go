package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/reconforge/netrecon/internal/config"
	"github.com/reconforge/netrecon/internal/protocol"
)

// NewPortscanCmd creates the portscan command.
func NewPortscanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portscan [host]",
		Short: "Probe TCP ports on a host",
		Long: `Portscan probes TCP ports with a connect timeout and classifies each
port as OPEN, CLOSED, TIMEOUT, or DNS ERROR.

With --port a single port is probed; with --common the well-known service
ports (FTP, SSH, Telnet, SMTP, DNS, HTTP, POP3, IMAP, HTTPS, IMAPS,
POP3S) are swept in order.

Examples:
  # Probe a single port
  netrecon portscan --port 443 example.com

  # Sweep the common service ports
  netrecon portscan --common example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPortscanCmd,
	}

	cmd.Flags().IntP("port", "p", 0,
		"Single port to probe")
	cmd.Flags().Bool("common", false,
		"Probe the common service ports")
	cmd.Flags().DurationP("timeout", "t", config.DefaultPortTimeout,
		"Connect timeout per port")

	return cmd
}

// runPortscanCmd executes the portscan command.
func runPortscanCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no host specified")
	}
	host := args[0]

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return err
	}
	common, err := cmd.Flags().GetBool("common")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	var ports []int
	switch {
	case common:
		ports = config.CommonPorts
	case port > 0 && port <= 65535:
		ports = []int{port}
	default:
		return errors.New("specify --port <1-65535> or --common")
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(context.Background(), logger)
	defer cancel()

	scanner := protocol.NewPortScanner(protocol.WithPortTimeout(timeout))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning %d port(s) on %s...\n\n", len(ports), host)
	startTime := time.Now()

	results := scanner.ProbeAll(ctx, host, ports)

	for _, result := range results {
		fmt.Fprintf(out, "  %5d  %s\n", result.Port, result.Status)
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(out, "\nScan finished in %s\n", elapsed.Round(time.Millisecond))

	if len(results) < len(ports) {
		fmt.Fprintln(out, "Scan interrupted; partial results shown.")
	}
	return nil
}
