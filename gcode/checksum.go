package gcode

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/snksoft/crc"
)

// ErrChecksumMismatch is returned when a line's trailing *NN checksum does
// not match the computed CRC of the line body.
var ErrChecksumMismatch = errors.New("gcode: checksum mismatch")

var xmodem = crc.NewHash(crc.XMODEM)

// StripChecksum validates and removes an optional GRBL-style trailing
// "*NN" checksum from line, where NN is the XMODEM CRC of everything
// before the '*', formatted as decimal. Lines without a '*' pass through
// unchanged. This framing is not part of the base grammar; it is an
// opt-in integrity check for noisy serial links.
func StripChecksum(line string) (string, error) {
	star := strings.LastIndexByte(line, '*')
	if star < 0 {
		return line, nil
	}
	body, tail := line[:star], line[star+1:]
	want, err := strconv.ParseUint(tail, 10, 64)
	if err != nil {
		return "", errors.Wrap(err, "gcode: malformed checksum suffix")
	}
	got := xmodem.CalculateCRC([]byte(body))
	if got != want {
		return "", errors.Wrapf(ErrChecksumMismatch, "got %d want %d", got, want)
	}
	return body, nil
}
