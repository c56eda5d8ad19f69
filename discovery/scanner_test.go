package discovery

import (
	"context"
	"errors"
	"net"
	"reflect"
	"strconv"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func mustCIDR(t *testing.T, cidr string) *net.IPNet {
	t.Helper()
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		t.Fatalf("ParseCIDR(%q): %v", cidr, err)
	}
	return network
}

// closedPort reserves an ephemeral port and releases it, leaving a port
// that refuses connections.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestHosts(t *testing.T) {
	tests := []struct {
		cidr string
		want []string
	}{
		{"192.168.1.0/30", []string{"192.168.1.1", "192.168.1.2"}},
		{"192.168.1.4/31", []string{"192.168.1.4", "192.168.1.5"}},
		{"192.168.1.7/32", []string{"192.168.1.7"}},
		{"10.0.0.0/29", []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5", "10.0.0.6"}},
	}
	for _, tt := range tests {
		got, err := hosts(mustCIDR(t, tt.cidr))
		if err != nil {
			t.Errorf("hosts(%s): %v", tt.cidr, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("hosts(%s) = %v, want %v", tt.cidr, got, tt.want)
		}
	}
}

func TestHostsFullSubnet(t *testing.T) {
	got, err := hosts(mustCIDR(t, "192.168.1.0/24"))
	if err != nil {
		t.Fatalf("hosts: %v", err)
	}
	if len(got) != 254 {
		t.Fatalf("a /24 has %d hosts, want 254", len(got))
	}
	if got[0] != "192.168.1.1" || got[253] != "192.168.1.254" {
		t.Fatalf("host range = %s .. %s", got[0], got[253])
	}
}

func TestHostsRejectsWideAndNonIPv4Networks(t *testing.T) {
	if _, err := hosts(mustCIDR(t, "10.0.0.0/8")); err == nil {
		t.Error("a /8 sweep was not refused")
	}
	if _, err := hosts(mustCIDR(t, "2001:db8::/120")); err == nil {
		t.Error("an IPv6 network was not refused")
	}
}

func TestScannerPorts(t *testing.T) {
	s := &Scanner{}
	if got := s.ports(); !reflect.DeepEqual(got, DefaultPorts) {
		t.Errorf("default ports = %v, want %v", got, DefaultPorts)
	}
	s.Ports = []int{3306, 3306, -1, 70000, 3307}
	if got := s.ports(); !reflect.DeepEqual(got, []int{3306, 3307}) {
		t.Errorf("ports = %v, want deduplicated [3306 3307]", got)
	}
}

func TestScanFindsListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	port := ln.Addr().(*net.TCPAddr).Port

	s := &Scanner{Ports: []int{port}, Timeout: 2 * time.Second, Limit: rate.Inf}
	found, err := s.Scan(context.Background(), mustCIDR(t, "127.0.0.1/32"), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []Endpoint{{Host: "127.0.0.1", Port: port}}
	if !reflect.DeepEqual(found, want) {
		t.Fatalf("found = %v, want %v", found, want)
	}
	if got, wantAddr := found[0].Addr(), net.JoinHostPort("127.0.0.1", strconv.Itoa(port)); got != wantAddr {
		t.Fatalf("Addr() = %q, want %q", got, wantAddr)
	}
}

func TestScanClosedPortFindsNothing(t *testing.T) {
	s := &Scanner{Ports: []int{closedPort(t)}, Timeout: time.Second}
	found, err := s.Scan(context.Background(), mustCIDR(t, "127.0.0.1/32"), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("found = %v, want none", found)
	}
}

func TestScanProgressSeesEveryProbe(t *testing.T) {
	port := closedPort(t)
	s := &Scanner{Ports: []int{port}, Timeout: time.Second}

	var checks []int
	total := 0
	progress := func(checked, tot int, host string, p int) bool {
		checks = append(checks, checked)
		total = tot
		if p != port {
			t.Errorf("probe port = %d, want %d", p, port)
		}
		return false
	}
	// 127.0.0.0/30 yields the two loopback hosts .1 and .2.
	if _, err := s.Scan(context.Background(), mustCIDR(t, "127.0.0.0/30"), progress); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !reflect.DeepEqual(checks, []int{1, 2}) || total != 2 {
		t.Fatalf("progress saw checks %v of %d, want [1 2] of 2", checks, total)
	}
}

func TestScanProgressAborts(t *testing.T) {
	s := &Scanner{Ports: []int{closedPort(t)}, Timeout: time.Second}

	calls := 0
	progress := func(checked, total int, host string, port int) bool {
		calls++
		return true
	}
	found, err := s.Scan(context.Background(), mustCIDR(t, "127.0.0.0/30"), progress)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if calls != 1 {
		t.Fatalf("scan kept probing after abort: %d progress calls", calls)
	}
	if len(found) != 0 {
		t.Fatalf("found = %v, want none", found)
	}
}

func TestScanCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Scanner{Ports: []int{closedPort(t)}, Timeout: time.Second}
	_, err := s.Scan(ctx, mustCIDR(t, "127.0.0.0/30"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestScanNilNetwork(t *testing.T) {
	s := &Scanner{}
	if _, err := s.Scan(context.Background(), nil, nil); err == nil {
		t.Fatal("nil network accepted")
	}
}

func TestLocalSubnet(t *testing.T) {
	subnet, err := LocalSubnet()
	if err != nil {
		t.Skipf("no routable IPv4 interface on this machine: %v", err)
	}
	if ones, bits := subnet.Mask.Size(); ones != 24 || bits != 32 {
		t.Fatalf("mask = /%d (%d bits), want /24 IPv4", ones, bits)
	}
	if subnet.IP.To4() == nil {
		t.Fatalf("subnet IP %v is not IPv4", subnet.IP)
	}
}
