package utils

import (
	"fmt"
	"net"
	"time"
)

// PingHost checks that a TCP listener is reachable at host:port
func PingHost(host, port string, timeout time.Duration) error {
	address := net.JoinHostPort(host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}

// PingDatabase checks if the configured database server is reachable
func PingDatabase(host, port string) error {
	return PingHost(host, port, 1500*time.Millisecond)
}
