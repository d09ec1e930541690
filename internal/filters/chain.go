package filters

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// Chain applies its filters in order. The first filter reads src, the rest
// work in place on dst.
type Chain struct {
	steps []Filter
}

func NewChain(steps ...Filter) *Chain {
	return &Chain{steps: steps}
}

func (c *Chain) Name() string {
	if len(c.steps) == 0 {
		return "none"
	}
	return strings.Join(c.StepNames(), "+")
}

func (c *Chain) Kind() Kind { return KindChain }
func (c *Chain) sealed()    {}

func (c *Chain) Apply(src gocv.Mat, dst *gocv.Mat) error {
	if dst == nil {
		return fmt.Errorf("chain: %w", ErrNilDest)
	}
	if len(c.steps) == 0 {
		src.CopyTo(dst)
		return nil
	}

	if err := c.steps[0].Apply(src, dst); err != nil {
		return fmt.Errorf("step %s failed: %w", c.steps[0].Name(), err)
	}
	for _, step := range c.steps[1:] {
		if err := step.Apply(*dst, dst); err != nil {
			return fmt.Errorf("step %s failed: %w", step.Name(), err)
		}
	}
	return nil
}

func (c *Chain) AddStep(step Filter) {
	c.steps = append(c.steps, step)
}

func (c *Chain) StepCount() int {
	return len(c.steps)
}

func (c *Chain) StepNames() []string {
	names := make([]string, len(c.steps))
	for i, step := range c.steps {
		names[i] = step.Name()
	}
	return names
}
