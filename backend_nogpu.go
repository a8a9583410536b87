//go:build nogpu

package tileraster

import "fmt"

// openGPU fails in builds without the GPU backend.
func (p *Pipeline) openGPU() (executor, error) {
	return nil, fmt.Errorf("%w: built with the nogpu tag", ErrNoDevice)
}
