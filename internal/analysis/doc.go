// Package analysis inspects stored runs: coordinate traces, their
// frequency content and phase portraits.
//
//	x, _ := analysis.Trace(frames, 55, analysis.AxisY)
//	s := analysis.NewSpectrum(x, dt*float64(sampleEvery))
//	f, _ := s.Dominant()
package analysis
