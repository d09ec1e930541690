package filters

import (
	"fmt"
	"sort"
	"strings"

	"cameo/internal/curves"
)

// Options configures filters that take parameters.
type Options struct {
	BlurKsize int
	EdgeKsize int
}

func DefaultOptions() Options {
	return Options{BlurKsize: DefaultBlurKsize, EdgeKsize: DefaultEdgeKsize}
}

var convolutions = map[string]func() *ConvolutionFilter{
	"sharpen":    NewSharpenFilter,
	"find_edges": NewFindEdgesFilter,
	"blur":       NewBlurFilter,
	"emboss":     NewEmbossFilter,
}

// Names lists every filter name New accepts.
func Names() []string {
	names := []string{"stroke_edges"}
	for name := range convolutions {
		names = append(names, name)
	}
	names = append(names, curves.PresetNames()...)
	sort.Strings(names)
	return names
}

// New builds the filter registered under name.
func New(name string, opts Options) (Filter, error) {
	if ctor, ok := convolutions[name]; ok {
		return ctor(), nil
	}
	if name == "stroke_edges" {
		return NewStrokeEdgesFilter(opts.BlurKsize, opts.EdgeKsize)
	}
	if preset, err := curves.PresetByName(name); err == nil {
		return NewPresetFilter(preset)
	}
	return nil, fmt.Errorf("unknown filter %q (known: %s)", name, strings.Join(Names(), ", "))
}

// Parse builds a chain from names joined with "+". "none" and the empty
// string yield an empty chain.
func Parse(spec string, opts Options) (*Chain, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "none" {
		return NewChain(), nil
	}

	chain := NewChain()
	for _, name := range strings.Split(spec, "+") {
		f, err := New(strings.TrimSpace(name), opts)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", spec, err)
		}
		chain.AddStep(f)
	}
	return chain, nil
}
