package store

import (
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

// DefaultPort is the standard MySQL/MariaDB listen port.
const DefaultPort = 3306

// ConnParams carries the transient connection details for a target server.
// They live only for the duration of a run and are never persisted by the
// engine.
type ConnParams struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Missing returns the names of required fields that are empty. Host, user
// and password are required; a zero port falls back to DefaultPort.
func (p ConnParams) Missing() []string {
	var missing []string
	if p.Host == "" {
		missing = append(missing, "host")
	}
	if p.User == "" {
		missing = append(missing, "user")
	}
	if p.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}

// Addr returns the host:port address of the server.
func (p ConnParams) Addr() string {
	port := p.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(port))
}

// DSN builds a driver DSN for the named database. An empty name yields a
// server-level connection with no database selected.
func (p ConnParams) DSN(database string) string {
	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = p.Addr()
	cfg.DBName = database
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}
