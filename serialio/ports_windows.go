//go:build windows

package serialio

import (
	"os/exec"
	"strings"

	"github.com/lordadamson/cgo.wchar"
)

// ListPorts enumerates attached COM ports by friendly name. It shells out
// to the "mode" console command and decodes its output through
// cgo.wchar, since the console codepage on these lab workstations is
// frequently not UTF-8.
func ListPorts() ([]string, error) {
	out, err := exec.Command("mode").Output()
	if err != nil {
		return nil, err
	}
	ws, err := wchar.FromGoString(string(out))
	if err != nil {
		return nil, err
	}
	text := ws.GoString()

	var ports []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Status for device COM") {
			name := strings.TrimSuffix(strings.TrimPrefix(line, "Status for device "), ":")
			ports = append(ports, name)
		}
	}
	return ports, nil
}
