/*Package serialio provides a line-oriented, concurrent-safe serial
transport for the controller's G-code dialect.

Line embeds the teacher's RemoteDevice lifecycle (exponential-backoff
Open, deferred CloseEventually, mutex-guarded send/recv) adapted to frame
whole G-code lines instead of arbitrary request/response buffers, and to
rate-limit how fast incoming lines are handed to the interpreter so a
runaway sender cannot starve the tick goroutine.
*/
package serialio

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"github.com/tarm/serial"
	"golang.org/x/time/rate"
)

// Sentinel errors.
var (
	ErrNotConnected       = errors.New("serialio: not connected")
	ErrTerminatorNotFound = errors.New("serialio: line terminator not found in response")
)

const (
	// DefaultTerminator ends every line in both directions.
	DefaultTerminator = byte('\n')

	closeDelay = 5 * time.Second
)

// Line is a persistent serial connection to the stepper controller,
// framing whole lines of text in both directions.
type Line struct {
	mu sync.Mutex

	cfg      *serial.Config
	conn     *serial.Port
	lastComm time.Time

	// limiter bounds how many lines per second are accepted from ReadLine,
	// protecting the foreground reader from a misbehaving or flooding
	// sender.
	limiter *rate.Limiter
}

// NewLine returns a Line configured to dial the named serial port at baud,
// accepting up to maxLinesPerSec lines of backpressure from ReadLine.
func NewLine(port string, baud int, maxLinesPerSec float64) *Line {
	return &Line{
		cfg:     &serial.Config{Name: port, Baud: baud, ReadTimeout: time.Second},
		limiter: rate.NewLimiter(rate.Limit(maxLinesPerSec), 1),
	}
}

// Open establishes the serial connection, retrying with exponential
// backoff the way lab-instrument links in this codebase always have,
// since controller boards often need a moment after being power-cycled
// before their USB-serial bridge enumerates.
func (l *Line) Open() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		return nil
	}
	op := func() error {
		conn, err := serial.OpenPort(l.cfg)
		if err != nil {
			return err
		}
		l.conn = conn
		return nil
	}
	return backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      5 * time.Second,
		Clock:               backoff.SystemClock,
	})
}

// Close closes the connection immediately.
func (l *Line) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}

// CloseEventually schedules a close after the connection has been idle
// for closeDelay, so a burst of commands in quick succession doesn't
// thrash the port.
func (l *Line) CloseEventually() {
	go func() {
		time.Sleep(closeDelay)
		l.mu.Lock()
		idle := time.Since(l.lastComm) >= closeDelay
		l.mu.Unlock()
		if idle {
			l.Close()
		}
	}()
}

// WriteLine sends line with the terminator appended.
func (l *Line) WriteLine(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return ErrNotConnected
	}
	b := append([]byte(line), DefaultTerminator)
	_, err := l.conn.Write(b)
	l.lastComm = time.Now()
	return errors.Wrap(err, "serialio: write")
}

// ReadLine blocks, subject to ctx, for rate-limiter admission and then
// reads a single terminated line from the port.
func (l *Line) ReadLine(ctx context.Context) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil {
		return "", ErrNotConnected
	}
	buf, err := bufio.NewReader(conn).ReadBytes(DefaultTerminator)
	l.mu.Lock()
	l.lastComm = time.Now()
	l.mu.Unlock()
	if err != nil {
		return "", errors.Wrap(err, "serialio: read")
	}
	if !bytes.HasSuffix(buf, []byte{DefaultTerminator}) {
		return string(buf), ErrTerminatorNotFound
	}
	return strings.TrimRight(string(buf), "\r\n"), nil
}
