// Command proxyarpd answers ARP requests on behalf of the hosts listed in its
// configuration file.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/arpwhisper/proxyarp"
	"github.com/arpwhisper/proxyarp/internal/config"
)

var (
	// ifaceFlag overrides the network interface from the configuration file
	ifaceFlag = pflag.StringP("interface", "i", "", "network interface to use for ARP traffic (overrides configuration)")

	// levelFlag overrides the logging level from the configuration file
	levelFlag = pflag.StringP("log-level", "l", "", "logging level: debug, info, warn or off (overrides configuration)")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <CONFIG_PATH>\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(1)
	}

	if err := run(pflag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading the configuration file failed: %w", err)
	}

	if *ifaceFlag != "" {
		cfg.Interface = *ifaceFlag
	}
	if *levelFlag != "" {
		if cfg.LogLevel, err = config.ParseLogLevel(*levelFlag); err != nil {
			return err
		}
	}

	logger := newLogger(cfg.LogLevel, os.Stderr)

	table, err := cfg.Table()
	if err != nil {
		return err
	}

	ifi, err := net.InterfaceByName(cfg.Interface)
	if err != nil {
		return fmt.Errorf("interface %q: %w", cfg.Interface, err)
	}

	logger.Info("using configuration", "path", path)
	logger.Info("listening for ARP requests", "interface", ifi.Name, "transport", cfg.Transport)
	logger.Debug("hosts defined in configuration", "count", table.Len())
	for _, e := range table.Entries() {
		logger.Debug("answering for host", "ip", e.IP, "mac", e.HardwareAddr.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &proxyarp.Server{
		Table:     table,
		Observer:  proxyarp.NewLogObserver(logger),
		Transport: cfg.Transport,
	}
	if err := s.ListenAndServe(ctx, ifi); err != nil {
		return err
	}

	logger.Info("shutdown signal received")
	return nil
}

// newLogger creates a text logger writing to w at the given level.
func newLogger(level config.LogLevel, w io.Writer) *slog.Logger {
	var l slog.Level
	switch level {
	case config.LevelOff:
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	case config.LevelDebug:
		l = slog.LevelDebug
	case config.LevelWarn:
		l = slog.LevelWarn
	default:
		l = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
