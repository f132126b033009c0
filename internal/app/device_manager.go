package app

import (
	"fmt"
	"io"

	"github.com/emmett/holidayvox/internal/audio"
)

// DeviceManager handles audio device listing
type DeviceManager struct {
	out  io.Writer
	list func() ([]audio.DeviceInfo, error)
}

// NewDeviceManager creates a new DeviceManager instance
func NewDeviceManager(out io.Writer) *DeviceManager {
	return &DeviceManager{out: out, list: audio.ListDevices}
}

// ListDevices lists all available audio input devices
func (dm *DeviceManager) ListDevices() error {
	fmt.Fprintln(dm.out, "Detecting audio input devices...")
	fmt.Fprintln(dm.out)

	devices, err := dm.list()
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	audio.PrintDevices(dm.out, devices)
	if len(devices) == 0 {
		return fmt.Errorf("no devices found")
	}
	return nil
}
