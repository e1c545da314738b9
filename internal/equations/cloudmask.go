package equations

import (
	"fmt"

	"cloudmask/internal/grid"
	"cloudmask/internal/processing/filters"
)

// DefaultShadowRadius is how far, in cells, a shadow may be from a cloud.
const DefaultShadowRadius = 100.0

// BandNames lists the inputs in their canonical order.
var BandNames = []string{"blue", "green", "red", "nir", "swir1", "swir2", "cirrus", "tirs1"}

// Bands holds the co-registered scene inputs. Optical bands are TOA
// reflectance 0..1, TIRS1 is brightness temperature in degrees Celsius.
type Bands struct {
	Blue   *grid.Float
	Green  *grid.Float
	Red    *grid.Float
	NIR    *grid.Float
	SWIR1  *grid.Float
	SWIR2  *grid.Float
	Cirrus *grid.Float
	TIRS1  *grid.Float
}

// List returns the bands in BandNames order.
func (b Bands) List() []*grid.Float {
	return []*grid.Float{b.Blue, b.Green, b.Red, b.NIR, b.SWIR1, b.SWIR2, b.Cirrus, b.TIRS1}
}

// Validate reports a missing band or a grid.ErrShapeMismatch.
func (b Bands) Validate() error {
	list := b.List()
	shapers := make([]grid.Shaper, len(list))
	for i, g := range list {
		if g == nil {
			return fmt.Errorf("band %s is missing", BandNames[i])
		}
		shapers[i] = g
	}
	return grid.CheckShapes(BandNames, shapers...)
}

// Options tunes the post filter and the water cutoff.
type Options struct {
	// MinFilter erodes clouds and shadows to remove outliers. Disabled
	// windows also skip the shadow proximity gate.
	MinFilter filters.Window
	// MaxFilter dilates both layers to buffer their edges.
	MaxFilter filters.Window
	// WaterThreshold is the water cloud probability cutoff.
	WaterThreshold float64
	// ShadowRadius keeps shadows strictly closer than this to a cloud.
	ShadowRadius float64
}

func DefaultOptions() Options {
	return Options{
		MinFilter:      filters.Square(3),
		MaxFilter:      filters.Square(21),
		WaterThreshold: DefaultWaterThreshold,
		ShadowRadius:   DefaultShadowRadius,
	}
}

// Layers keeps the intermediate products of a run for diagnostics.
type Layers struct {
	NDVI      *grid.Float
	NDSI      *grid.Float
	Whiteness *grid.Float
	Water     *grid.Mask
	PCP       *grid.Mask

	WaterTemp      float64
	LandTempLow    float64
	LandTempHigh   float64
	LandThreshold  float64
	WaterCloudProb *grid.Float
	LandCloudProb  *grid.Float

	// PotentialCloud and PotentialShadow are the layers before post filtering.
	PotentialCloud  *grid.Mask
	PotentialShadow *grid.Mask
}

// Result is the outcome of CloudMask. Cloud and Shadow are true where
// cloud and cloud shadow were detected.
type Result struct {
	Cloud  *grid.Mask
	Shadow *grid.Mask
	Layers Layers
}

// CloudMask runs the complete potential cloud and shadow computation.
// The only errors are a missing band, a shape mismatch or an invalid
// filter window; degenerate scenes yield NaN thresholds, not errors.
func CloudMask(b Bands, opt Options) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := opt.MinFilter.Validate(); err != nil {
		return nil, fmt.Errorf("min filter: %w", err)
	}
	if err := opt.MaxFilter.Validate(); err != nil {
		return nil, fmt.Errorf("max filter: %w", err)
	}

	layers := PotentialLayers(b, opt.WaterThreshold)

	cloud, shadow, err := PostFilter(layers.PotentialCloud, layers.PotentialShadow, opt)
	if err != nil {
		return nil, err
	}

	return &Result{Cloud: cloud, Shadow: shadow, Layers: layers}, nil
}

// PotentialLayers computes the potential cloud and cloud shadow layers
// without morphology. Bands must already be validated: it panics with
// grid.ErrShapeMismatch otherwise.
func PotentialLayers(b Bands, waterThreshold float64) Layers {
	var l Layers

	l.NDVI = NDVI(b.Red, b.NIR)
	l.NDSI = NDSI(b.Green, b.SWIR1)
	l.Whiteness = WhitenessIndex(b.Blue, b.Green, b.Red)
	l.Water = WaterTest(l.NDVI, b.NIR)

	l.PCP = PotentialCloudPixels(l.NDVI, l.NDSI, b.Blue, b.Green, b.Red, b.NIR,
		b.SWIR1, b.SWIR2, b.Cirrus, b.TIRS1)

	cirrusProb := CirrusProb(b.Cirrus)

	l.WaterTemp = TempWater(l.Water, b.SWIR2, b.TIRS1)
	l.WaterCloudProb = WaterCloudProb(
		WaterTempProb(l.WaterTemp, b.TIRS1),
		BrightnessProb(b.NIR, true),
		cirrusProb,
	)

	l.LandTempLow, l.LandTempHigh = TempLand(l.PCP, l.Water, b.TIRS1)
	l.LandCloudProb = LandCloudProb(
		LandTempProb(b.TIRS1, l.LandTempLow, l.LandTempHigh),
		VariabilityProb(l.NDVI, l.NDSI, l.Whiteness),
		cirrusProb,
	)
	l.LandThreshold = LandThreshold(l.LandCloudProb, l.PCP, l.Water)

	l.PotentialCloud = PotentialCloudLayer(l.PCP, l.Water, b.TIRS1, l.LandTempLow,
		l.LandCloudProb, l.LandThreshold, l.WaterCloudProb, waterThreshold)
	l.PotentialShadow = PotentialCloudShadowLayer(b.NIR, b.SWIR1, l.Water)

	return l
}

// PostFilter erodes clouds, keeps shadows near the remaining clouds,
// erodes shadows and finally dilates both. The order is fixed. The gate
// and both erosions only run with an enabled MinFilter.
func PostFilter(cloud, shadow *grid.Mask, opt Options) (*grid.Mask, *grid.Mask, error) {
	if err := grid.CheckShapes([]string{"cloud", "shadow"}, cloud, shadow); err != nil {
		return nil, nil, err
	}

	var err error
	if opt.MinFilter.Enabled() {
		if cloud, err = filters.MinimumFilter(cloud, opt.MinFilter); err != nil {
			return nil, nil, fmt.Errorf("erode clouds: %w", err)
		}

		dist := filters.DistanceToTrue(cloud)
		near := dist.Where(func(d float64) bool { return d < opt.ShadowRadius })
		shadow = grid.And(shadow, near)

		if shadow, err = filters.MinimumFilter(shadow, opt.MinFilter); err != nil {
			return nil, nil, fmt.Errorf("erode shadows: %w", err)
		}
	}

	if opt.MaxFilter.Enabled() {
		if cloud, err = filters.MaximumFilter(cloud, opt.MaxFilter); err != nil {
			return nil, nil, fmt.Errorf("dilate clouds: %w", err)
		}
		if shadow, err = filters.MaximumFilter(shadow, opt.MaxFilter); err != nil {
			return nil, nil, fmt.Errorf("dilate shadows: %w", err)
		}
	}

	return cloud, shadow, nil
}
