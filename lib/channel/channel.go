package channel

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

const (
	// DefaultDialTimeout bounds connection establishment.
	DefaultDialTimeout = 5 * time.Second
	// DefaultWriteTimeout bounds a single line write so a stalled peer
	// cannot block senders.
	DefaultWriteTimeout = 5 * time.Second
)

// Config describes the remote endpoint of a channel.
type Config struct {
	Host         string
	Port         int
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the endpoint the robot's parameter server listens on.
func DefaultConfig() *Config {
	return &Config{
		Host:         "127.0.0.1",
		Port:         5555,
		DialTimeout:  DefaultDialTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Address returns host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Channel is a persistent, serialized command connection.
type Channel struct {
	addr         string
	writeTimeout time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to the endpoint in cfg. It fails with a *ConnectionError when
// the connection is not established within cfg.DialTimeout.
func Dial(ctx context.Context, cfg *Config) (*Channel, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	addr := cfg.Address()

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		log.WithFields(logger.Fields{
			"at":      "channel.Dial",
			"address": addr,
			"timeout": timeout.String(),
		}).WithError(err).Warn("channel_connect_failed")
		return nil, &ConnectionError{
			Address: addr,
			Err:     oops.In("channel").With("timeout", timeout).Wrapf(err, "dial %s", addr),
		}
	}

	log.WithFields(logger.Fields{
		"at":      "channel.Dial",
		"address": addr,
	}).Debug("channel_connected")
	return newChannel(conn, addr, cfg.WriteTimeout), nil
}

// New wraps an established connection.
func New(conn net.Conn) *Channel {
	return newChannel(conn, conn.RemoteAddr().String(), DefaultWriteTimeout)
}

func newChannel(conn net.Conn, addr string, writeTimeout time.Duration) *Channel {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Channel{addr: addr, conn: conn, writeTimeout: writeTimeout}
}

// Address returns the remote address the channel was created for.
func (c *Channel) Address() string { return c.addr }

// Connected reports whether the channel still holds its connection.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SendCommand writes one command line. Only malformed tokens produce an
// error, and then nothing is written. A failed write disconnects the channel
// and is logged, not returned; sends on a disconnected channel do nothing.
// No reply is awaited.
func (c *Channel) SendCommand(moduleTag, command string, args ...any) error {
	line, err := EncodeLine(moduleTag, command, args...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		log.WithFields(logger.Fields{
			"at":      "channel.SendCommand",
			"address": c.addr,
			"module":  moduleTag,
			"command": command,
		}).Debug("channel_disconnected_command_dropped")
		return nil
	}

	err = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err == nil {
		_, err = c.conn.Write(line)
	}
	if err == nil {
		return nil
	}
	log.WithFields(logger.Fields{
		"at":      "channel.SendCommand",
		"address": c.addr,
		"module":  moduleTag,
		"command": command,
	}).WithError(err).Warn("channel_write_failed_disconnecting")
	c.conn.Close()
	c.conn = nil
	return nil
}

// Show asks the remote module to print its current parameters to its own log.
func (c *Channel) Show(moduleTag string) error {
	return c.SendCommand(moduleTag, CommandShow)
}

// Close releases the connection. It is safe to call more than once and after
// a failed write.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
