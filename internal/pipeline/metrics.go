package pipeline

import (
	"math"

	"cloudmask/internal/equations"
	"cloudmask/internal/grid"
	"cloudmask/internal/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BandSummary describes the finite values of one input band.
type BandSummary struct {
	Name   string
	Valid  int
	NaN    int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// SummarizeBand ignores NaN and infinite cells. Statistics of a band with no
// finite cell are NaN.
func SummarizeBand(name string, g *grid.Float) BandSummary {
	s := BandSummary{Name: name}
	finite := make([]float64, 0, len(g.Data))
	for _, v := range g.Data {
		switch {
		case math.IsNaN(v):
			s.NaN++
		case math.IsInf(v, 0):
		default:
			finite = append(finite, v)
		}
	}
	s.Valid = len(finite)

	if len(finite) == 0 {
		s.Min, s.Max, s.Mean, s.StdDev = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	s.Mean, s.StdDev = stat.MeanStdDev(finite, nil)
	if len(finite) == 1 {
		s.StdDev = 0
	}
	return s
}

func (s BandSummary) Fields() map[string]interface{} {
	return map[string]interface{}{
		"band":   s.Name,
		"valid":  s.Valid,
		"nan":    s.NaN,
		"min":    s.Min,
		"max":    s.Max,
		"mean":   s.Mean,
		"stddev": s.StdDev,
	}
}

// ComputeMaskMetrics counts cloud, shadow and thermal nodata pixels of a run
// and the clear pixels left valid in the encoded output. A pixel may count
// towards more than one of the first three.
func ComputeMaskMetrics(res *equations.Result, tirs1 *grid.Float, encoded *grid.Uint8) models.MaskMetrics {
	m := models.MaskMetrics{
		Pixels:       encoded.Len(),
		CloudPixels:  res.Cloud.Count(),
		ShadowPixels: res.Shadow.Count(),
		NodataPixels: equations.ThermalNodata(tirs1).Count(),
	}
	for _, v := range encoded.Data {
		if v == equations.MaskValid {
			m.ClearPixels++
		}
	}

	if m.Pixels > 0 {
		counts := []float64{float64(m.CloudPixels), float64(m.ShadowPixels), float64(m.NodataPixels), float64(m.ClearPixels)}
		floats.Scale(1/float64(m.Pixels), counts)
		m.CloudFraction, m.ShadowFraction, m.NodataFraction, m.ClearFraction = counts[0], counts[1], counts[2], counts[3]
	}
	return m
}

func metricsFields(m models.MaskMetrics) map[string]interface{} {
	return map[string]interface{}{
		"pixels":          m.Pixels,
		"cloud_fraction":  m.CloudFraction,
		"shadow_fraction": m.ShadowFraction,
		"nodata_fraction": m.NodataFraction,
		"clear_fraction":  m.ClearFraction,
	}
}
