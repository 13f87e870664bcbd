//go:build !windows

package serialio

import "path/filepath"

// ListPorts enumerates likely serial device nodes under /dev. Windows
// port discovery lives in ports_windows.go.
func ListPorts() ([]string, error) {
	var ports []string
	for _, pattern := range []string{"/dev/ttyACM*", "/dev/ttyUSB*", "/dev/cu.usbmodem*", "/dev/cu.usbserial*"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		ports = append(ports, matches...)
	}
	return ports, nil
}
