package gamemode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

// GameMode D-Bus constants
const (
	DefaultService   = "com.feralinteractive.GameMode"
	DefaultPath      = "/com/feralinteractive/GameMode"
	DefaultInterface = "com.feralinteractive.GameMode"
	DefaultTimeout   = 5 * time.Second
)

// ErrRejected is returned when the daemon answers a request with a non-zero
// status.
var ErrRejected = errors.New("gamemode rejected request")

// Options selects the daemon endpoint.
type Options struct {
	Service   string
	Path      string
	Interface string
	Timeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.Service == "" {
		o.Service = DefaultService
	}
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if o.Interface == "" {
		o.Interface = DefaultInterface
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Client talks to the GameMode daemon over the session bus.
type Client struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	iface   string
	timeout time.Duration
}

// Connect opens a session bus connection for the lifetime of the client.
func Connect(opts Options) (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return NewClient(conn, opts), nil
}

// NewClient uses an existing bus connection.
func NewClient(conn *dbus.Conn, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		conn:    conn,
		obj:     conn.Object(opts.Service, dbus.ObjectPath(opts.Path)),
		iface:   opts.Interface,
		timeout: opts.Timeout,
	}
}

// Close closes the bus connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// RegisterGame asks the daemon to enable game mode for pid.
func (c *Client) RegisterGame(pid uint32) error {
	status, err := c.call("RegisterGame", pid)
	if err != nil {
		return err
	}
	return checkStatus("RegisterGame", pid, status)
}

// UnregisterGame releases game mode for pid.
func (c *Client) UnregisterGame(pid uint32) error {
	status, err := c.call("UnregisterGame", pid)
	if err != nil {
		return err
	}
	return checkStatus("UnregisterGame", pid, status)
}

// QueryStatus returns the daemon's status code for pid, see StatusText.
func (c *Client) QueryStatus(pid uint32) (int32, error) {
	return c.call("QueryStatus", pid)
}

// StatusText describes a QueryStatus result.
func StatusText(status int32) string {
	switch {
	case status == 0:
		return "inactive"
	case status == 1:
		return "active, pid not registered"
	case status == 2:
		return "active, pid registered"
	case status < 0:
		return fmt.Sprintf("error (%d)", status)
	default:
		return fmt.Sprintf("unknown (%d)", status)
	}
}

func (c *Client) call(method string, pid uint32) (int32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var status int32
	err := c.obj.CallWithContext(ctx, c.iface+"."+method, 0, int32(pid)).Store(&status)
	if err != nil {
		return 0, fmt.Errorf("%s(%d): %w", method, pid, err)
	}
	return status, nil
}

func checkStatus(method string, pid uint32, status int32) error {
	if status != 0 {
		return fmt.Errorf("%s(%d) returned %d: %w", method, pid, status, ErrRejected)
	}
	return nil
}
