package network

import "time"

// Config holds snapshot stream configuration
type Config struct {
	// Address to bind, empty disables the service
	Address string

	// SnapshotEvery broadcasts one snapshot per this many presentation frames
	SnapshotEvery int

	MaxPeers int

	WriteTimeout      time.Duration
	HeartbeatInterval time.Duration
	ShutdownTimeout   time.Duration

	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
}

// DefaultConfig returns loopback defaults
func DefaultConfig() *Config {
	return &Config{
		Address:           "127.0.0.1:8089",
		SnapshotEvery:     2,
		MaxPeers:          16,
		WriteTimeout:      5 * time.Second,
		HeartbeatInterval: 10 * time.Second,
		ShutdownTimeout:   2 * time.Second,
		ReadBufferSize:    1024,
		WriteBufferSize:   16 * 1024,
		SendQueueSize:     8,
	}
}
