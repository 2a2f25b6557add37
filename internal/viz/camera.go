package viz

import (
	"math"

	"github.com/san-kum/massspring/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera rotates the scene about its centre and projects it with a weak
// perspective onto a pixel grid.
type Camera struct {
	Center     r3.Vec
	Radius     float64
	Distance   float64
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Radius: 1, Distance: 4, RotX: -0.35, RotY: 0.6, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Fit centres the camera on the points' bounding box.
func (c *Camera) Fit(points []dynamo.Point) {
	if len(points) == 0 {
		return
	}
	lo, hi := points[0].Position, points[0].Position
	for _, p := range points[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.Position.X), Y: math.Min(lo.Y, p.Position.Y), Z: math.Min(lo.Z, p.Position.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.Position.X), Y: math.Max(hi.Y, p.Position.Y), Z: math.Max(hi.Z, p.Position.Z)}
	}
	c.Center = r3.Scale(0.5, r3.Add(lo, hi))
	c.Radius = math.Max(0.5*r3.Norm(r3.Sub(hi, lo)), 0.5)
}

// rotate turns p about the camera centre, first around Y then around X.
func (c *Camera) rotate(p r3.Vec) r3.Vec {
	p = r3.Sub(p, c.Center)
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// Project maps a world point to pixel coordinates on a sw x sh grid. The
// bool is false for points behind the camera or off the grid.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, bool) {
	rot := r3.Scale(1/c.Radius, c.rotate(p))
	dist := c.Distance - rot.Z
	if dist <= 0.1 {
		return 0, 0, false
	}
	scale := c.Distance / dist * c.Zoom * float64(min(sw, sh)) * 0.4
	x := int(rot.X*scale) + sw/2
	y := int(-rot.Y*scale) + sh/2
	return x, y, x >= 0 && x < sw && y >= 0 && y < sh
}

// Render draws springs as lines and points as single pixels, fixed points
// as 3x3 dots.
func Render(cv *Canvas, cam *Camera, points []dynamo.Point, springs []dynamo.Spring) {
	sw, sh := cv.PixelSize()
	for _, s := range springs {
		x1, y1, ok1 := cam.Project(points[s.P1].Position, sw, sh)
		x2, y2, ok2 := cam.Project(points[s.P2].Position, sw, sh)
		if ok1 && ok2 {
			cv.DrawLine(x1, y1, x2, y2)
		}
	}
	for _, p := range points {
		x, y, ok := cam.Project(p.Position, sw, sh)
		if !ok {
			continue
		}
		if p.Fixed {
			cv.Dot(x, y)
		} else {
			cv.Set(x, y)
		}
	}
}

// RenderFloor draws the floor plane's edge under the scene.
func RenderFloor(cv *Canvas, cam *Camera, height float64) {
	sw, sh := cv.PixelSize()
	r := cam.Radius * 1.5
	corners := []r3.Vec{
		{X: cam.Center.X - r, Y: height, Z: cam.Center.Z - r},
		{X: cam.Center.X + r, Y: height, Z: cam.Center.Z - r},
		{X: cam.Center.X + r, Y: height, Z: cam.Center.Z + r},
		{X: cam.Center.X - r, Y: height, Z: cam.Center.Z + r},
	}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		x1, y1, ok1 := cam.Project(a, sw, sh)
		x2, y2, ok2 := cam.Project(b, sw, sh)
		if ok1 && ok2 {
			cv.DrawLine(x1, y1, x2, y2)
		}
	}
}
