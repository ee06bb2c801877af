//go:build windows

package delegate

import "os"

// Windows cannot deliver os.Interrupt to another process.
func interrupt(p *os.Process) error {
	return p.Kill()
}
