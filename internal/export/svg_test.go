package export

import (
	"strings"
	"testing"

	"github.com/san-kum/massspring/internal/dynamo"
	"github.com/san-kum/massspring/internal/scenes"
)

func TestFrameToSVG(t *testing.T) {
	s := &dynamo.Scene{}
	if err := scenes.Cloth(s, scenes.ClothSize, scenes.ClothSpacing); err != nil {
		t.Fatal(err)
	}
	floor := dynamo.DefaultFloorHeight

	out := FrameToSVG(s.Points, s.Springs, FrameOptions{Width: 400, Height: 300, Floor: &floor})

	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("not a complete svg document")
	}
	if !strings.Contains(out, `width="400" height="300"`) {
		t.Error("size not applied")
	}
	if got := strings.Count(out, `fill="`+fixedColor+`"`); got != 2 {
		t.Errorf("fixed points drawn = %d, want 2", got)
	}
	if got := strings.Count(out, "<circle"); got != len(s.Points) {
		t.Errorf("circles = %d, want %d", got, len(s.Points))
	}
	if got := strings.Count(out, "<line x1"); got != len(s.Springs) {
		t.Errorf("spring lines = %d, want %d", got, len(s.Springs))
	}
}

func TestFrameToSVG_Defaults(t *testing.T) {
	out := FrameToSVG(nil, nil, FrameOptions{})
	if !strings.Contains(out, `width="800" height="600"`) {
		t.Error("default size not applied")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	out := TrajectoryToSVG([]float64{0, 1, 2}, []float64{0, 1, 0}, 100, 50, "#ff00ff")
	if !strings.Contains(out, `stroke="#ff00ff"`) || strings.Count(out, " L") != 2 {
		t.Errorf("unexpected path:\n%s", out)
	}
	if TrajectoryToSVG([]float64{0}, []float64{0}, 100, 50, "#fff") != "" {
		t.Error("expected empty output for a single sample")
	}
}
