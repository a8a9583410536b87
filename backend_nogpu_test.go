//go:build nogpu

package tileraster

import (
	"errors"
	"testing"
)

func TestGPUBackendUnavailable(t *testing.T) {
	p := New(WithBackend(BackendGPU))
	defer p.Close()
	if err := p.Init(8, 8, 0); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Init() = %v, want ErrNoDevice", err)
	}
}
