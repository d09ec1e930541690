package filters

import (
	"fmt"

	"cameo/internal/curves"

	"gocv.io/x/gocv"
)

// CurveFilter remaps intensities through lookup tables built from control
// point curves. Three channel images use the per-channel tables, each
// composed with the master curve. Single channel images use the master
// table alone.
type CurveFilter struct {
	name   string
	tables curves.ChannelTables[uint8]
}

// NewCurveFilter builds the tables once. Curves with fewer than two points
// leave their channel unchanged.
func NewCurveFilter(name string, master, blue, green, red curves.Points) (*CurveFilter, error) {
	tables, err := curves.BuildChannelTables[uint8](master, blue, green, red)
	if err != nil {
		return nil, fmt.Errorf("curve filter %s: %w", name, err)
	}
	return &CurveFilter{name: name, tables: tables}, nil
}

// NewPresetFilter builds a curve filter from a film emulation preset.
func NewPresetFilter(p curves.Preset) (*CurveFilter, error) {
	return NewCurveFilter(p.Name, p.Master, p.Blue, p.Green, p.Red)
}

// NewPortraFilter returns the Portra film emulation grade.
func NewPortraFilter() *CurveFilter {
	f, err := NewPresetFilter(curves.Portra)
	if err != nil {
		panic(err)
	}
	return f
}

func (c *CurveFilter) Name() string { return c.name }
func (c *CurveFilter) Kind() Kind   { return KindCurve }
func (c *CurveFilter) sealed()      {}

// Tables exposes the filter's lookup tables. Callers must not modify them.
func (c *CurveFilter) Tables() curves.ChannelTables[uint8] {
	return c.tables
}

func (c *CurveFilter) Apply(src gocv.Mat, dst *gocv.Mat) error {
	if err := validate8U(src, dst, c.name); err != nil {
		return err
	}

	if src.Channels() == 1 {
		src.CopyTo(dst)
		return applyTable(c.tables.Master, dst, c.name)
	}

	channels := gocv.Split(src)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()
	if len(channels) != 3 {
		return fmt.Errorf("%s: split produced %d channels: %w", c.name, len(channels), ErrChannels)
	}

	for i, table := range []curves.Table[uint8]{c.tables.Blue, c.tables.Green, c.tables.Red} {
		if err := applyTable(table, &channels[i], c.name); err != nil {
			return err
		}
	}

	gocv.Merge(channels, dst)
	return nil
}

// applyTable remaps a single channel mat in place.
func applyTable(table curves.Table[uint8], m *gocv.Mat, operation string) error {
	if table == nil {
		return nil
	}

	data, err := m.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("%s: access channel data: %w", operation, err)
	}

	if err := table.Apply(data, data); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}
