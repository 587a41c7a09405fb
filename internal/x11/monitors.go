package x11

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Monitor is the visible area of one active CRTC in root coordinates.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors lists the active monitors via RandR. Servers without RandR, or
// without any enabled CRTC (Xvfb, some nested servers), report the root
// window as a single monitor so that stored geometry is still restorable.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	monitors, err := c.randrMonitors()
	if err == nil && len(monitors) > 0 {
		return monitors, nil
	}

	root, gerr := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if gerr != nil {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get root geometry: %w", gerr)
	}
	return []Monitor{{
		Name:   "root",
		Width:  int(root.Width),
		Height: int(root.Height),
	}}, nil
}

func (c *Connection) randrMonitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("crtc%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}

	sort.Slice(monitors, func(i, j int) bool { return monitors[i].ID < monitors[j].ID })
	return monitors, nil
}
