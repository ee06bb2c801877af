//go:build !windows

package delegate

import "os"

func interrupt(p *os.Process) error {
	return p.Signal(os.Interrupt)
}
