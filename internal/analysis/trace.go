package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/massspring/internal/dynamo"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: axis %q", dynamo.ErrParameterBounds, s)
}

// Trace extracts one coordinate of one point from flattened frames.
func Trace(frames [][]float64, point int, axis Axis) ([]float64, error) {
	if len(frames) == 0 {
		return nil, nil
	}
	n := len(frames[0]) / 3
	if point < 0 || point >= n {
		return nil, dynamo.IndexError("point", point, n)
	}
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f[3*point+int(axis)]
	}
	return out, nil
}
