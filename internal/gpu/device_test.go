// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"testing"
)

type halProvider struct {
	device, queue any
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func TestDeviceFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	d, err := DeviceFromProvider(halProvider{device, queue})
	if err != nil {
		t.Fatalf("DeviceFromProvider: %v", err)
	}
	if d.Device != device || d.Queue != queue {
		t.Error("provider device or queue not taken")
	}
	d.Close()
	if d.Device != nil || d.Queue != nil {
		t.Error("Close kept references to a shared device")
	}
}

func TestDeviceFromProviderRejects(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name     string
		provider any
	}{
		{"no HAL accessors", struct{}{}},
		{"wrong device type", halProvider{"device", queue}},
		{"wrong queue type", halProvider{device, 42}},
		{"nil device", halProvider{nil, queue}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DeviceFromProvider(tt.provider); !errors.Is(err, ErrNoDevice) {
				t.Errorf("err = %v, want ErrNoDevice", err)
			}
		})
	}
}
