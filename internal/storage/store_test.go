package storage

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/san-kum/massspring/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

func sampleRun() (RunMetadata, *dynamo.Result) {
	points := []dynamo.Point{
		{Position: r3.Vec{}, Fixed: true},
		{Position: r3.Vec{Y: 2}},
	}
	springs := []dynamo.Spring{{P1: 0, P2: 1, RestLength: 1}}
	meta := NewRunMetadata("simple", dynamo.Leapfrog, dynamo.DefaultParams(), dynamo.Features{}, points, springs,
		dynamo.Config{Dt: 0.01, Duration: 0.02})

	result := &dynamo.Result{
		Frames: [][]float64{
			{0, 0, 0, 0, 2, 0},
			{0, 0, 0, 0.001, 1.99, 0},
			{0, 0, 0, 0.002, 1.97, 0.125},
		},
		Times:      []float64{0, 0.01, 0.02},
		Metrics:    map[string]float64{"energy": 1.5},
		StepsTaken: 2,
	}
	return meta, result
}

func TestStoreSaveLoad(t *testing.T) {
	g := NewWithT(t)
	st := New(t.TempDir())
	g.Expect(st.Init()).To(Succeed())

	meta, result := sampleRun()
	runID, err := st.Save(meta, result)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(runID).To(HavePrefix("simple_leapfrog_"))

	loaded, err := st.Load(runID)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(loaded.Scenario).To(Equal("simple"))
	g.Expect(loaded.Integrator).To(Equal("leapfrog"))
	g.Expect(loaded.Steps).To(Equal(2))
	g.Expect(loaded.Params).To(Equal(dynamo.DefaultParams()))
	g.Expect(loaded.Fixed).To(Equal([]int{0}))
	g.Expect(loaded.Springs).To(Equal(meta.Springs))
	g.Expect(loaded.Metrics).To(HaveKeyWithValue("energy", 1.5))

	frames, times, err := st.LoadStates(runID)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(times).To(Equal(result.Times))
	g.Expect(frames).To(Equal(result.Frames))
}

func TestStoreUniqueIDs(t *testing.T) {
	g := NewWithT(t)
	st := New(t.TempDir())
	meta, result := sampleRun()

	first, err := st.Save(meta, result)
	g.Expect(err).NotTo(HaveOccurred())
	second, err := st.Save(meta, result)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(second).NotTo(Equal(first))

	runs, err := st.List()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(runs).To(HaveLen(2))
}

func TestStoreListMissingDir(t *testing.T) {
	g := NewWithT(t)
	runs, err := New(t.TempDir() + "/nope").List()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(runs).To(BeEmpty())
}

func TestFrame(t *testing.T) {
	g := NewWithT(t)
	meta, result := sampleRun()
	points := meta.Frame(result.Frames[2])

	g.Expect(points).To(HaveLen(2))
	g.Expect(points[0].Fixed).To(BeTrue())
	g.Expect(points[1].Position).To(Equal(r3.Vec{X: 0.002, Y: 1.97, Z: 0.125}))
}

func TestWriteStatesHeader(t *testing.T) {
	g := NewWithT(t)
	_, result := sampleRun()
	var buf bytes.Buffer
	g.Expect(WriteStates(&buf, result.Frames, result.Times)).To(Succeed())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	g.Expect(lines).To(HaveLen(4))
	g.Expect(lines[0]).To(Equal("time,p0_x,p0_y,p0_z,p1_x,p1_y,p1_z"))
}

func TestExportJSON(t *testing.T) {
	g := NewWithT(t)
	meta, result := sampleRun()
	var buf bytes.Buffer
	g.Expect(ExportJSON(&buf, &meta, result.Frames, result.Times)).To(Succeed())

	var out ExportData
	g.Expect(json.Unmarshal(buf.Bytes(), &out)).To(Succeed())
	g.Expect(out.Run.Scenario).To(Equal("simple"))
	g.Expect(out.Frames).To(HaveLen(3))
}
