package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/GoCodeAlone/mediamigrate/config"
	"github.com/GoCodeAlone/mediamigrate/discovery"
	"github.com/GoCodeAlone/mediamigrate/store"
)

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	network := fs.String("network", "", "CIDR to sweep (default: the local /24)")
	ports := fs.String("ports", "", "Comma-separated ports to probe (default 3306,3307)")
	timeout := fs.Duration("timeout", discovery.DefaultTimeout, "Timeout per connection attempt")
	every := fs.Duration("every", 0, "Pace probes to at most one per interval")
	test := fs.Bool("test", false, "Try the configured credentials against every server found")
	configPath := fs.String("config", "", "Path to a config file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Usage: mediamigrate scan [options]

Sweep a subnet for MySQL/MariaDB servers by dialing the usual listen
ports. With -test, the configured credentials are tried against every
server found.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	subnet, err := resolveNetwork(*network)
	if err != nil {
		return err
	}
	probePorts, err := parsePorts(*ports)
	if err != nil {
		return err
	}

	scanner := &discovery.Scanner{Ports: probePorts, Timeout: *timeout}
	if *every > 0 {
		scanner.Limit = rate.Every(*every)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("Scanning %s ...\n", subnet)
	progress := func(checked, total int, _ string, _ int) bool {
		fmt.Fprintf(os.Stderr, "\r%d/%d", checked, total)
		return false
	}
	found, err := scanner.Scan(ctx, subnet, progress)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	if len(found) == 0 {
		fmt.Println("No database servers found.")
		return nil
	}
	for _, ep := range found {
		if *test {
			fmt.Printf("  %s  %s\n", ep.Addr(), credentialVerdict(ctx, cfg, ep))
		} else {
			fmt.Printf("  %s\n", ep.Addr())
		}
	}
	fmt.Printf("%d server(s) found.\n", len(found))
	return nil
}

// resolveNetwork parses the CIDR flag, falling back to the subnet around
// this machine's primary address.
func resolveNetwork(cidr string) (*net.IPNet, error) {
	if cidr == "" {
		return discovery.LocalSubnet()
	}
	_, subnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("bad network %q: %w", cidr, err)
	}
	return subnet, nil
}

// parsePorts splits a comma-separated port list. Empty keeps the
// scanner's defaults.
func parsePorts(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		p, err := strconv.Atoi(field)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("bad port %q", field)
		}
		out = append(out, p)
	}
	return out, nil
}

// credentialVerdict reports whether the configured credentials work
// against one discovered endpoint.
func credentialVerdict(ctx context.Context, cfg *config.Config, ep discovery.Endpoint) string {
	params := store.ConnParams{
		Host:     ep.Host,
		Port:     ep.Port,
		User:     cfg.Server.User,
		Password: cfg.Server.Password,
	}
	if params.User == "" {
		return "no credentials configured"
	}
	server, err := store.NewServer(params)
	if err != nil {
		return err.Error()
	}
	defer server.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Ping(pingCtx); err != nil {
		return "credentials rejected"
	}
	return "credentials accepted"
}
