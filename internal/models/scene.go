package models

import (
	"fmt"
	"time"

	"cloudmask/internal/equations"
	"cloudmask/internal/grid"
	"cloudmask/internal/raster"
)

// BandPaths names the input file of every band
type BandPaths struct {
	Blue   string
	Green  string
	Red    string
	NIR    string
	SWIR1  string
	SWIR2  string
	Cirrus string
	TIRS1  string
}

// BandPathsFromArgs maps positional arguments in equations.BandNames order
func BandPathsFromArgs(args []string) (BandPaths, error) {
	if len(args) != len(equations.BandNames) {
		return BandPaths{}, NewValidationError("bands", len(args),
			fmt.Sprintf("expected %d band paths (%v)", len(equations.BandNames), equations.BandNames))
	}
	return BandPaths{
		Blue:   args[0],
		Green:  args[1],
		Red:    args[2],
		NIR:    args[3],
		SWIR1:  args[4],
		SWIR2:  args[5],
		Cirrus: args[6],
		TIRS1:  args[7],
	}, nil
}

// List returns the paths in equations.BandNames order
func (p BandPaths) List() []string {
	return []string{p.Blue, p.Green, p.Red, p.NIR, p.SWIR1, p.SWIR2, p.Cirrus, p.TIRS1}
}

// SceneData is a fully loaded scene ready for equations.CloudMask
type SceneData struct {
	Paths    BandPaths
	Bands    equations.Bands
	Profile  raster.Profile
	LoadTime time.Duration
}

// MaskMetrics summarises the encoded output
type MaskMetrics struct {
	Pixels         int
	CloudPixels    int
	ShadowPixels   int
	NodataPixels   int
	ClearPixels    int
	CloudFraction  float64
	ShadowFraction float64
	NodataFraction float64
	ClearFraction  float64
}

// ProcessingResult contains the output of a cloud mask run
type ProcessingResult struct {
	Output      string
	Mask        *grid.Uint8
	Layers      *equations.Result
	Metrics     MaskMetrics
	Parameters  MaskParameters
	ProcessTime time.Duration
}
