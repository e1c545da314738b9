package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloudmask/internal/debug/timing"
	"cloudmask/internal/logger"
	"cloudmask/internal/models"
)

// Config wires the collaborators of a Coordinator. Logger and Parameters
// default to a discarding logger and the command line defaults.
type Config struct {
	Reader      BandReader
	Writer      MaskWriter
	Logger      Logger
	Parameters  *models.ProcessingConfiguration
	Concurrency int
}

// Coordinator runs load, compute and save for one scene at a time.
type Coordinator struct {
	logger    Logger
	params    *models.ProcessingConfiguration
	state     *models.ProcessingStateRepository
	timing    *timing.Tracker
	loader    *bandLoader
	processor *maskProcessor
	saver     *maskSaver
}

func NewCoordinator(cfg Config) *Coordinator {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	params := cfg.Parameters
	if params == nil {
		params = models.NewProcessingConfiguration()
	}
	tracker := timing.NewTracker(&timingLog{logger: log})

	return &Coordinator{
		logger: log,
		params: params,
		state:  models.NewProcessingStateRepository(),
		timing: tracker,
		loader: &bandLoader{
			reader:        cfg.Reader,
			logger:        log,
			timingTracker: tracker,
			concurrency:   cfg.Concurrency,
		},
		processor: &maskProcessor{logger: log, timingTracker: tracker},
		saver:     &maskSaver{writer: cfg.Writer, logger: log, timingTracker: tracker},
	}
}

// Run computes the cloud mask of inputs and writes it to output. Nothing
// is written when any stage fails or ctx is cancelled before saving.
func (c *Coordinator) Run(ctx context.Context, inputs models.BandPaths, output string) (result *models.ProcessingResult, err error) {
	c.state.StartProcessing()
	start := time.Now()
	defer func() {
		switch {
		case err == nil:
			c.state.CompleteProcessing()
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.state.CancelProcessing()
			c.logger.Warning("Coordinator", "run cancelled", map[string]interface{}{"stage": c.state.GetState().CurrentStage})
		default:
			c.state.FailProcessing()
			c.logger.Error("Coordinator", err, map[string]interface{}{"output": output})
		}
	}()

	params := c.params.Parameters()
	if err := c.params.Validate(); err != nil {
		return nil, err
	}
	writeOpts, err := params.WriteOptions()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.state.UpdateProgress("load", 0.1)
	loadStart := time.Now()
	scene, err := c.loader.Load(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("load bands: %w", err)
	}
	scene.LoadTime = time.Since(loadStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.state.UpdateProgress("compute", 0.4)
	res, err := c.processor.Process(ctx, scene, params)
	if err != nil {
		return nil, fmt.Errorf("compute mask: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.state.UpdateProgress("save", 0.9)
	encoded, err := c.saver.Save(ctx, output, res, scene.Bands.TIRS1, scene.Profile, writeOpts)
	if err != nil {
		return nil, fmt.Errorf("save mask: %w", err)
	}

	metrics := ComputeMaskMetrics(res, scene.Bands.TIRS1, encoded)
	fields := metricsFields(metrics)
	fields["output"] = output
	c.logger.Info("Coordinator", "cloud mask written", fields)

	return &models.ProcessingResult{
		Output:      output,
		Mask:        encoded,
		Layers:      res,
		Metrics:     metrics,
		Parameters:  params,
		ProcessTime: time.Since(start),
	}, nil
}

// State reports the progress of the current or last run.
func (c *Coordinator) State() models.ProcessingState {
	return c.state.GetState()
}

// Timings returns the accumulated stage timings of every run so far.
func (c *Coordinator) Timings() []timing.Stage {
	return c.timing.Stages()
}

// timingLog forwards finished timings to the debug log.
type timingLog struct {
	logger Logger
}

func (t *timingLog) Publish(event timing.Event) {
	t.logger.Debug("Timing", event.Type, event.Data)
}
