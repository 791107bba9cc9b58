// Package serial adapts github.com/goburrow/serial to engine.Transport,
// the real UART line behind an EV3 sensor link.
package serial

import (
	"context"
	"fmt"
	"sync"

	goserial "github.com/goburrow/serial"
)

// Config is the subset of goburrow/serial's Config this adapter exposes.
type Config struct {
	Address  string
	DataBits int
	StopBits int
	Parity   string
}

// Client is an engine.Transport backed by a real serial port. The UART
// handshake switches baud rate mid-session, and goburrow/serial has no
// live-reconfigure call, so SetBaud closes and reopens the port.
type Client struct {
	mu   sync.Mutex
	cfg  Config
	baud int
	port goserial.Port
}

// Open opens the serial port at the given initial baud rate.
func Open(cfg Config, initialBaud int) (*Client, error) {
	c := &Client{cfg: cfg, baud: initialBaud}
	if err := c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) open() error {
	port, err := goserial.Open(&goserial.Config{
		Address:  c.cfg.Address,
		BaudRate: c.baud,
		DataBits: orDefault(c.cfg.DataBits, 8),
		StopBits: orDefault(c.cfg.StopBits, 1),
		Parity:   orDefaultStr(c.cfg.Parity, "N"),
	})
	if err != nil {
		return fmt.Errorf("serial: open %s at %d baud: %w", c.cfg.Address, c.baud, err)
	}
	c.port = port
	return nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultStr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Write implements engine.Transport.
func (c *Client) Write(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		return fmt.Errorf("serial: port not open")
	}
	_, err := c.port.Write(data)
	return err
}

// SetBaud implements engine.Transport by closing and reopening the port,
// the only baud-rate change goburrow/serial supports.
func (c *Client) SetBaud(baud int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port != nil {
		c.port.Close()
	}
	c.baud = baud
	return c.open()
}

// Flush is a best-effort no-op: goburrow/serial's Port does not expose a
// drain call, so this relies on the transmit worker's buffered channel
// already having handed the bytes to the OS by the time it returns.
func (c *Client) Flush() error {
	return nil
}

// Read delivers bytes into the given feed function until the port
// errors or is closed. Intended to run in its own goroutine, pumping
// engine.Session.Feed.
func (c *Client) Read(feed func([]byte)) error {
	buf := make([]byte, 256)
	for {
		c.mu.Lock()
		port := c.port
		c.mu.Unlock()
		if port == nil {
			return fmt.Errorf("serial: port not open")
		}
		n, err := port.Read(buf)
		if n > 0 {
			feed(buf[:n])
		}
		if err != nil {
			return err
		}
	}
}

// Close closes the underlying port.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	return err
}
