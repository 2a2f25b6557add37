package physics

import "github.com/san-kum/massspring/internal/dynamo"

// Floor is a horizontal plane at y = Height that points cannot go below.
type Floor struct {
	Height float64
}

// Resolve clamps every non-fixed point below the floor onto it and zeroes
// its vertical velocity. It returns the number of points clamped.
func (f Floor) Resolve(points []dynamo.Point) int {
	hits := 0
	for i := range points {
		p := &points[i]
		if p.Fixed || p.Position.Y >= f.Height {
			continue
		}
		p.Position.Y = f.Height
		p.Velocity.Y = 0
		hits++
	}
	return hits
}
