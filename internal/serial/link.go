// Package serial owns the single hardware link to the parking controller.
package serial

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	bugst "go.bug.st/serial"

	"github.com/smartparking/backend/internal/logging"
)

// CommandReset asks the controller to clear its alarm; it answers with ALERT:STAFF_RESET.
const CommandReset = "CMD_RESET"

var ErrClosed = errors.New("hardware link is not open")

// Link is the shared controller connection. It is safe for concurrent use: the ingest
// loop reads while HTTP handlers write commands.
type Link struct {
	name string

	mu   sync.Mutex
	port io.ReadWriteCloser
	open bool
}

// Open opens the named serial device. On failure the returned Link is usable but closed,
// so callers can keep running and report the link as unavailable.
func Open(name string, baudRate int) (*Link, error) {
	port, err := bugst.Open(name, &bugst.Mode{BaudRate: baudRate})
	if err != nil {
		return &Link{name: name}, err
	}
	logging.Info().Str("port", name).Int("baud_rate", baudRate).Msg("serial port opened")
	return New(name, port), nil
}

// New wraps an already open port.
func New(name string, port io.ReadWriteCloser) *Link {
	return &Link{name: name, port: port, open: port != nil}
}

func (l *Link) Name() string { return l.name }

func (l *Link) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

// WriteCommand sends one newline-terminated command line.
func (l *Link) WriteCommand(cmd string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return ErrClosed
	}
	_, err := io.WriteString(l.port, cmd+"\n")
	return err
}

// ReadLines calls handle with each trimmed, non-blank line until the port fails,
// reaches EOF, or ctx is canceled. The link is closed when ReadLines returns.
func (l *Link) ReadLines(ctx context.Context, handle func(line string)) error {
	l.mu.Lock()
	port, open := l.port, l.open
	l.mu.Unlock()
	if !open {
		return ErrClosed
	}

	stop := context.AfterFunc(ctx, func() { _ = l.Close() })
	defer stop()

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		handle(line)
	}
	err := scanner.Err()
	_ = l.Close()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return nil
	}
	l.open = false
	return l.port.Close()
}
