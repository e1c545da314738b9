package models

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"cloudmask/internal/equations"
	"cloudmask/internal/processing/filters"
	"cloudmask/internal/raster"

	"gopkg.in/yaml.v3"
)

// ErrInvalidParameter is wrapped by every ValidationError.
var ErrInvalidParameter = errors.New("invalid parameter")

// Command line defaults. The max filter default is wider than the library
// default in equations.DefaultOptions.
const (
	DefaultMinFilter = 3
	DefaultMaxFilter = 25
)

// MaskParameters contains the tunable settings of a cloud mask run
type MaskParameters struct {
	MinFilter       filters.Window
	MaxFilter       filters.Window
	WaterThreshold  float64
	ShadowRadius    float64
	DstDType        string
	CreationOptions []string
}

// DefaultMaskParameters returns the command line defaults
func DefaultMaskParameters() MaskParameters {
	return MaskParameters{
		MinFilter:      filters.Square(DefaultMinFilter),
		MaxFilter:      filters.Square(DefaultMaxFilter),
		WaterThreshold: equations.DefaultWaterThreshold,
		ShadowRadius:   equations.DefaultShadowRadius,
		DstDType:       string(raster.Uint8),
	}
}

// Options converts the parameters for equations.CloudMask
func (p MaskParameters) Options() equations.Options {
	return equations.Options{
		MinFilter:      p.MinFilter,
		MaxFilter:      p.MaxFilter,
		WaterThreshold: p.WaterThreshold,
		ShadowRadius:   p.ShadowRadius,
	}
}

// WriteOptions converts the parameters for raster.WriteMask
func (p MaskParameters) WriteOptions() (raster.WriteOptions, error) {
	dtype, err := raster.ParseDType(p.DstDType)
	if err != nil {
		return raster.WriteOptions{}, NewValidationError("dst_dtype", p.DstDType, err.Error())
	}
	return raster.WriteOptions{
		DType:           dtype,
		CreationOptions: append([]string(nil), p.CreationOptions...),
	}, nil
}

func (p MaskParameters) clone() MaskParameters {
	p.CreationOptions = append([]string(nil), p.CreationOptions...)
	return p
}

// ParameterRange defines valid range for a parameter
type ParameterRange struct {
	Min     interface{}
	Max     interface{}
	Options []interface{}
}

// defaultRanges caps filter windows at the largest Mat side gocv is asked to handle.
func defaultRanges() map[string]ParameterRange {
	dtypes := make([]interface{}, len(raster.DTypes))
	for i, d := range raster.DTypes {
		dtypes[i] = string(d)
	}
	return map[string]ParameterRange{
		"min_filter":      {Min: 0, Max: 4096},
		"max_filter":      {Min: 0, Max: 4096},
		"water_threshold": {Min: 0.0},
		"shadow_radius":   {Min: 0.0},
		"dst_dtype":       {Options: dtypes},
	}
}

// ProcessingConfiguration manages processing settings
type ProcessingConfiguration struct {
	mu     sync.RWMutex
	params MaskParameters
	ranges map[string]ParameterRange
}

// NewProcessingConfiguration creates a configuration holding the defaults
func NewProcessingConfiguration() *ProcessingConfiguration {
	return &ProcessingConfiguration{
		params: DefaultMaskParameters(),
		ranges: defaultRanges(),
	}
}

// Parameters returns a copy of the current parameters
func (pc *ProcessingConfiguration) Parameters() MaskParameters {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.params.clone()
}

// Update validates and stores p
func (pc *ProcessingConfiguration) Update(p MaskParameters) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if err := pc.validate(p); err != nil {
		return err
	}
	pc.params = p.clone()
	return nil
}

// Reset restores the defaults
func (pc *ProcessingConfiguration) Reset() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.params = DefaultMaskParameters()
}

// Validate checks the current parameters
func (pc *ProcessingConfiguration) Validate() error {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.validate(pc.params)
}

func (pc *ProcessingConfiguration) validate(p MaskParameters) error {
	for _, w := range []struct {
		name   string
		window filters.Window
	}{{"min_filter", p.MinFilter}, {"max_filter", p.MaxFilter}} {
		if err := pc.validateParameter(w.name, w.window.Rows); err != nil {
			return err
		}
		if err := pc.validateParameter(w.name, w.window.Cols); err != nil {
			return err
		}
	}

	if err := pc.validateParameter("water_threshold", p.WaterThreshold); err != nil {
		return err
	}
	if err := pc.validateParameter("shadow_radius", p.ShadowRadius); err != nil {
		return err
	}
	if err := pc.validateParameter("dst_dtype", p.DstDType); err != nil {
		return err
	}

	for _, co := range p.CreationOptions {
		key, _, ok := strings.Cut(co, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return NewValidationError("creation_options", co, "expected KEY=VALUE")
		}
	}
	return nil
}

// validateParameter checks if a parameter value is valid
func (pc *ProcessingConfiguration) validateParameter(name string, value interface{}) error {
	paramRange, hasRange := pc.ranges[name]
	if !hasRange {
		return nil
	}

	if len(paramRange.Options) > 0 {
		for _, option := range paramRange.Options {
			if value == option {
				return nil
			}
		}
		return NewValidationError(name, value, "value not in allowed options")
	}

	switch v := value.(type) {
	case int:
		if min, ok := paramRange.Min.(int); ok && v < min {
			return NewValidationError(name, value, "value below minimum")
		}
		if max, ok := paramRange.Max.(int); ok && v > max {
			return NewValidationError(name, value, "value above maximum")
		}
	case float64:
		if math.IsNaN(v) {
			return NewValidationError(name, value, "value is NaN")
		}
		if min, ok := paramRange.Min.(float64); ok && v < min {
			return NewValidationError(name, value, "value below minimum")
		}
		if max, ok := paramRange.Max.(float64); ok && v > max {
			return NewValidationError(name, value, "value above maximum")
		}
	}

	return nil
}

// parameterFile is the YAML tuning file. Absent keys keep their value.
type parameterFile struct {
	MinFilter       *windowSpec `yaml:"min_filter"`
	MaxFilter       *windowSpec `yaml:"max_filter"`
	WaterThreshold  *float64    `yaml:"water_threshold"`
	ShadowRadius    *float64    `yaml:"shadow_radius"`
	DstDType        *string     `yaml:"dst_dtype"`
	CreationOptions []string    `yaml:"creation_options"`
}

// windowSpec accepts either a single size or a rows/cols mapping.
type windowSpec filters.Window

func (w *windowSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var n int
		if err := node.Decode(&n); err != nil {
			return err
		}
		*w = windowSpec(filters.Square(n))
		return nil
	}

	var full struct {
		Rows int `yaml:"rows"`
		Cols int `yaml:"cols"`
	}
	if err := node.Decode(&full); err != nil {
		return err
	}
	*w = windowSpec{Rows: full.Rows, Cols: full.Cols}
	return nil
}

// LoadYAML overlays the settings in r onto the current parameters.
// Unknown keys are rejected and nothing changes on error.
func (pc *ProcessingConfiguration) LoadYAML(r io.Reader) error {
	var file parameterFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	p := pc.params.clone()
	if file.MinFilter != nil {
		p.MinFilter = filters.Window(*file.MinFilter)
	}
	if file.MaxFilter != nil {
		p.MaxFilter = filters.Window(*file.MaxFilter)
	}
	if file.WaterThreshold != nil {
		p.WaterThreshold = *file.WaterThreshold
	}
	if file.ShadowRadius != nil {
		p.ShadowRadius = *file.ShadowRadius
	}
	if file.DstDType != nil {
		p.DstDType = *file.DstDType
	}
	if file.CreationOptions != nil {
		p.CreationOptions = append([]string(nil), file.CreationOptions...)
	}

	if err := pc.validate(p); err != nil {
		return err
	}
	pc.params = p
	return nil
}

// LoadFile overlays a YAML tuning file
func (pc *ProcessingConfiguration) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open configuration: %w", err)
	}
	defer f.Close()

	if err := pc.LoadYAML(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string
	Value     interface{}
	Message   string
}

// NewValidationError creates a new validation error
func NewValidationError(parameter string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Message:   message,
	}
}

// Error returns the error message
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for parameter '%s' with value '%v': %s",
		ve.Parameter, ve.Value, ve.Message)
}

func (ve *ValidationError) Unwrap() error {
	return ErrInvalidParameter
}

// ProcessingState represents the current state of a run
type ProcessingState struct {
	IsActive     bool
	CurrentStage string
	Progress     float64
	StartTime    time.Time
	Elapsed      time.Duration
}

// ProcessingStateRepository manages processing state
type ProcessingStateRepository struct {
	mu    sync.RWMutex
	state ProcessingState
}

// NewProcessingStateRepository creates a new processing state repository
func NewProcessingStateRepository() *ProcessingStateRepository {
	return &ProcessingStateRepository{}
}

// GetState returns the current processing state
func (psr *ProcessingStateRepository) GetState() ProcessingState {
	psr.mu.RLock()
	defer psr.mu.RUnlock()
	return psr.state
}

// StartProcessing marks processing as active
func (psr *ProcessingStateRepository) StartProcessing() {
	psr.mu.Lock()
	defer psr.mu.Unlock()

	psr.state = ProcessingState{
		IsActive:     true,
		CurrentStage: "Initializing",
		StartTime:    time.Now(),
	}
}

// UpdateProgress updates processing progress and stage
func (psr *ProcessingStateRepository) UpdateProgress(stage string, progress float64) {
	psr.mu.Lock()
	defer psr.mu.Unlock()

	if psr.state.IsActive {
		psr.state.CurrentStage = stage
		psr.state.Progress = progress
		psr.state.Elapsed = time.Since(psr.state.StartTime)
	}
}

// CompleteProcessing marks processing as complete
func (psr *ProcessingStateRepository) CompleteProcessing() {
	psr.finish("Complete", 1.0)
}

// CancelProcessing marks processing as cancelled
func (psr *ProcessingStateRepository) CancelProcessing() {
	psr.finish("Cancelled", -1)
}

// FailProcessing marks processing as failed
func (psr *ProcessingStateRepository) FailProcessing() {
	psr.finish("Failed", -1)
}

// finish keeps the last progress when progress is negative.
func (psr *ProcessingStateRepository) finish(stage string, progress float64) {
	psr.mu.Lock()
	defer psr.mu.Unlock()

	psr.state.IsActive = false
	psr.state.CurrentStage = stage
	if progress >= 0 {
		psr.state.Progress = progress
	}
	if !psr.state.StartTime.IsZero() {
		psr.state.Elapsed = time.Since(psr.state.StartTime)
	}
}

// IsProcessing returns true if processing is currently active
func (psr *ProcessingStateRepository) IsProcessing() bool {
	psr.mu.RLock()
	defer psr.mu.RUnlock()
	return psr.state.IsActive
}
