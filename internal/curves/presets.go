package curves

import (
	"fmt"
	"sort"
)

// Preset is a fixed film emulation grade: one curve shared by all channels
// and one curve per BGR channel. Absent curves are nil.
type Preset struct {
	Name   string
	Master Points
	Blue   Points
	Green  Points
	Red    Points
}

var (
	Portra = Preset{
		Name:   "portra",
		Master: Pts([2]float64{0, 0}, [2]float64{23, 20}, [2]float64{157, 173}, [2]float64{255, 255}),
		Blue:   Pts([2]float64{0, 0}, [2]float64{23, 20}, [2]float64{231, 228}, [2]float64{255, 255}),
		Green:  Pts([2]float64{0, 0}, [2]float64{23, 20}, [2]float64{189, 196}, [2]float64{255, 255}),
		Red:    Pts([2]float64{0, 0}, [2]float64{69, 69}, [2]float64{213, 218}, [2]float64{255, 255}),
	}

	Provia = Preset{
		Name:  "provia",
		Blue:  Pts([2]float64{0, 0}, [2]float64{35, 25}, [2]float64{205, 227}, [2]float64{255, 255}),
		Green: Pts([2]float64{0, 0}, [2]float64{27, 21}, [2]float64{196, 207}, [2]float64{255, 255}),
		Red:   Pts([2]float64{0, 0}, [2]float64{59, 54}, [2]float64{202, 210}, [2]float64{255, 255}),
	}

	Velvia = Preset{
		Name:   "velvia",
		Master: Pts([2]float64{0, 0}, [2]float64{128, 118}, [2]float64{221, 215}, [2]float64{255, 255}),
		Blue:   Pts([2]float64{0, 0}, [2]float64{25, 21}, [2]float64{122, 153}, [2]float64{165, 206}, [2]float64{255, 255}),
		Green:  Pts([2]float64{0, 0}, [2]float64{25, 21}, [2]float64{95, 102}, [2]float64{181, 208}, [2]float64{255, 255}),
		Red:    Pts([2]float64{0, 0}, [2]float64{41, 28}, [2]float64{183, 209}, [2]float64{255, 255}),
	}

	CrossProcess = Preset{
		Name:  "cross_process",
		Blue:  Pts([2]float64{0, 20}, [2]float64{255, 235}),
		Green: Pts([2]float64{0, 0}, [2]float64{56, 39}, [2]float64{208, 226}, [2]float64{255, 255}),
		Red:   Pts([2]float64{0, 0}, [2]float64{56, 22}, [2]float64{211, 255}, [2]float64{255, 255}),
	}
)

var presets = map[string]Preset{
	Portra.Name:       Portra,
	Provia.Name:       Provia,
	Velvia.Name:       Velvia,
	CrossProcess.Name: CrossProcess,
}

func PresetByName(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown curve preset %q", name)
	}
	return p, nil
}

// PresetNames lists the registered presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChannelTables holds the composed per-channel tables of a preset.
type ChannelTables[T Sample] struct {
	Master Table[T]
	Blue   Table[T]
	Green  Table[T]
	Red    Table[T]
}

// Tables8 builds the preset's 8-bit channel tables.
func (p Preset) Tables8() (ChannelTables[uint8], error) {
	return BuildChannelTables[uint8](p.Master, p.Blue, p.Green, p.Red)
}

// BuildChannelTables composes each channel curve with master and tabulates
// the result over the full domain of T.
func BuildChannelTables[T Sample](master, blue, green, red Points) (ChannelTables[T], error) {
	var out ChannelTables[T]
	domainMax := float64(DomainSize[T]() - 1)

	funcs := make([]Func, 4)
	for i, pts := range []Points{master, blue, green, red} {
		if err := pts.Validate(domainMax); err != nil {
			return out, fmt.Errorf("curve %d: %w", i, err)
		}
		fn, err := NewCurveFunc(pts)
		if err != nil {
			return out, fmt.Errorf("curve %d: %w", i, err)
		}
		funcs[i] = fn
	}

	length := DomainSize[T]()
	var err error
	if out.Master, err = BuildTable[T](funcs[0], length); err != nil {
		return out, err
	}
	if out.Blue, err = BuildTable[T](Compose(funcs[1], funcs[0]), length); err != nil {
		return out, err
	}
	if out.Green, err = BuildTable[T](Compose(funcs[2], funcs[0]), length); err != nil {
		return out, err
	}
	if out.Red, err = BuildTable[T](Compose(funcs[3], funcs[0]), length); err != nil {
		return out, err
	}
	return out, nil
}
