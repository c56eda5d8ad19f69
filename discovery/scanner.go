// Package discovery probes a local network for MySQL and MariaDB servers
// a library could be migrated to. A probe is a plain TCP dial; whether
// credentials work is checked later, against the servers the user picked.
package discovery

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPorts are the listen ports tried on every host: the MySQL
// default and the common alternate.
var DefaultPorts = []int{3306, 3307}

// DefaultTimeout bounds a single probe dial.
const DefaultTimeout = time.Second

// minPrefixLen caps sweeps at a /16 so a mistyped CIDR cannot turn the
// scanner into a days-long internet sweep.
const minPrefixLen = 16

// Endpoint is one reachable server candidate.
type Endpoint struct {
	Host string
	Port int
}

// Addr returns the endpoint as host:port.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Progress is polled before every probe. checked counts probes issued so
// far and total is the full sweep size. Returning true aborts the scan;
// endpoints found up to that point are still returned.
type Progress func(checked, total int, host string, port int) bool

// Scanner sweeps the hosts of a subnet for open server ports, one dial at
// a time. The zero value scans DefaultPorts with DefaultTimeout, as fast
// as dials return.
type Scanner struct {
	// Ports to try on each host; DefaultPorts when empty.
	Ports []int
	// Timeout bounds each dial; DefaultTimeout when zero.
	Timeout time.Duration
	// Limit paces probes when positive, for networks where a fast sweep
	// trips intrusion detection.
	Limit rate.Limit
}

// Scan dials every host of the network on every configured port and
// returns the endpoints that accepted the connection. progress, when
// non-nil, is polled before each dial and may abort the sweep. Networks
// wider than a /16 are refused.
func (s *Scanner) Scan(ctx context.Context, network *net.IPNet, progress Progress) ([]Endpoint, error) {
	if network == nil {
		return nil, errors.New("no network to scan")
	}
	targets, err := hosts(network)
	if err != nil {
		return nil, err
	}
	ports := s.ports()
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var limiter *rate.Limiter
	if s.Limit > 0 {
		limiter = rate.NewLimiter(s.Limit, 1)
	}

	dialer := net.Dialer{Timeout: timeout}
	total := len(targets) * len(ports)
	checked := 0
	var found []Endpoint
	for _, host := range targets {
		for _, port := range ports {
			checked++
			if progress != nil && progress(checked, total, host, port) {
				return found, nil
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return found, err
				}
			}
			if err := ctx.Err(); err != nil {
				return found, err
			}
			conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
			if err != nil {
				continue
			}
			conn.Close()
			found = append(found, Endpoint{Host: host, Port: port})
		}
	}
	return found, nil
}

// ports returns the configured probe ports, deduplicated, or the
// defaults.
func (s *Scanner) ports() []int {
	if len(s.Ports) == 0 {
		return DefaultPorts
	}
	seen := make(map[int]bool, len(s.Ports))
	out := make([]int, 0, len(s.Ports))
	for _, p := range s.Ports {
		if p <= 0 || p > 65535 || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return DefaultPorts
	}
	return out
}

// hosts lists the usable addresses of an IPv4 network. Subnets with a
// distinct network and broadcast address exclude both; /31 and /32
// networks use every address.
func hosts(network *net.IPNet) ([]string, error) {
	ip4 := network.IP.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("network %s is not IPv4", network)
	}
	ones, bits := network.Mask.Size()
	if bits == 128 {
		ones -= 96
	}
	if ones < minPrefixLen {
		return nil, fmt.Errorf("network %s is wider than /%d, refusing to sweep it", network, minPrefixLen)
	}
	base := binary.BigEndian.Uint32(ip4.Mask(net.CIDRMask(ones, 32)))
	total := uint32(1) << (32 - ones)
	first, last := uint32(0), total-1
	if total > 2 {
		first, last = 1, total-2
	}
	out := make([]string, 0, last-first+1)
	for off := first; off <= last; off++ {
		addr := make(net.IP, net.IPv4len)
		binary.BigEndian.PutUint32(addr, base+off)
		out = append(out, addr.String())
	}
	return out, nil
}

// LocalSubnet returns the /24 around this machine's primary IPv4 address,
// which is where a home media server almost always lives.
func LocalSubnet() (*net.IPNet, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipnet.IP.To4()
		if ip4 == nil || ip4.IsLoopback() {
			continue
		}
		mask := net.CIDRMask(24, 32)
		return &net.IPNet{IP: ip4.Mask(mask), Mask: mask}, nil
	}
	return nil, errors.New("no active IPv4 interface found")
}
