package server

// Client abstracts the connection layer for both plain TCP and WebSocket
// connections, so one session loop serves both.
type Client interface {
	// ReadLine blocks until a complete, non-empty line is received (without newline).
	ReadLine() (string, error)

	// WriteLine sends one reply. A reply may span several lines, as a
	// rendered map does.
	WriteLine(message string) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the client's address for logging.
	RemoteAddr() string
}
