package audio

import (
	"fmt"
	"io"

	"github.com/gen2brain/malgo"
)

// DeviceInfo describes a capture device
type DeviceInfo struct {
	Index     int
	Name      string
	IsDefault bool
}

// String returns a human-readable representation of the device
func (d DeviceInfo) String() string {
	marker := ""
	if d.IsDefault {
		marker = " [DEFAULT]"
	}
	return fmt.Sprintf("%d. %s%s", d.Index+1, d.Name, marker)
}

// ListDevices returns the available capture devices
func ListDevices() ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i, info := range infos {
		devices = append(devices, DeviceInfo{
			Index:     i,
			Name:      info.Name(),
			IsDefault: info.IsDefault > 0,
		})
	}

	return devices, nil
}

// PrintDevices writes the capture device list with a usage hint
func PrintDevices(w io.Writer, devices []DeviceInfo) {
	if len(devices) == 0 {
		fmt.Fprintln(w, "No audio capture devices found.")
		return
	}

	fmt.Fprintf(w, "Found %d capture device(s):\n\n", len(devices))
	for _, d := range devices {
		fmt.Fprintln(w, d.String())
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "To use a specific device, run:")
	fmt.Fprintf(w, "  holidayvox --device %q\n", devices[0].Name)
}
