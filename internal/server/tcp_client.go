package server

import (
	"bufio"
	"net"
	"strings"
)

// TCPClient wraps a raw TCP connection speaking the line protocol.
type TCPClient struct {
	conn    net.Conn
	scanner *bufio.Scanner
	writer  *bufio.Writer
}

// NewTCPClient creates a new TCPClient from a TCP connection.
func NewTCPClient(conn net.Conn) *TCPClient {
	return &TCPClient{
		conn:    conn,
		scanner: bufio.NewScanner(conn),
		writer:  bufio.NewWriter(conn),
	}
}

// ReadLine reads the next non-blank line from the connection (blocking).
func (c *TCPClient) ReadLine() (string, error) {
	for c.scanner.Scan() {
		if line := strings.TrimSpace(c.scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := c.scanner.Err(); err != nil {
		return "", err
	}
	// Scanner finished without error means EOF/connection closed
	return "", net.ErrClosed
}

// WriteLine writes a message followed by a newline to the client.
func (c *TCPClient) WriteLine(message string) error {
	if _, err := c.writer.WriteString(message); err != nil {
		return err
	}
	if !strings.HasSuffix(message, "\n") {
		if err := c.writer.WriteByte('\n'); err != nil {
			return err
		}
	}
	return c.writer.Flush()
}

// Close closes the underlying connection.
func (c *TCPClient) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the remote address as a string.
func (c *TCPClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
