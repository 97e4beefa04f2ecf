package dynamo

import (
	"context"
	"math"
)

// Reference driver settings for the labs.
const (
	DefaultSubStep  = 0.0005
	DefaultMaxSteps = 100
	DefaultFrame    = 1.0 / 60
)

// Driver turns elapsed wall-clock intervals into fixed-size sub-steps.
// The number of sub-steps per frame is capped; backlog beyond the cap is
// dropped so a stalled host never triggers unbounded catch-up work.
type Driver struct {
	subStep  float64
	maxSteps int
	backlog  float64
	dropped  float64
	simTime  float64
	frames   int
	metrics  []Metric
}

func NewDriver(subStep float64, maxSteps int) *Driver {
	return &Driver{
		subStep:  subStep,
		maxSteps: maxSteps,
		metrics:  make([]Metric, 0),
	}
}

func (d *Driver) AddMetric(m Metric) { d.metrics = append(d.metrics, m) }

func (d *Driver) SubStep() float64 { return d.subStep }
func (d *Driver) MaxSteps() int    { return d.maxSteps }

// Time is the simulated time advanced so far.
func (d *Driver) Time() float64 { return d.simTime }

// Dropped is the total wall-clock backlog discarded by the step cap.
func (d *Driver) Dropped() float64 { return d.dropped }

func (d *Driver) Frames() int { return d.frames }

func (d *Driver) Validate() error {
	if d.subStep <= 0 || math.IsNaN(d.subStep) || math.IsInf(d.subStep, 0) {
		return InvalidParam("sub_step", d.subStep, "must be positive")
	}
	if d.maxSteps <= 0 {
		return InvalidParam("max_steps", float64(d.maxSteps), "must be positive")
	}
	return nil
}

// Reset clears accumulated time and metrics.
func (d *Driver) Reset() {
	d.backlog = 0
	d.dropped = 0
	d.simTime = 0
	d.frames = 0
	for _, m := range d.metrics {
		m.Reset()
	}
}

// Frame advances m by the elapsed interval and returns the sub-steps taken.
func (d *Driver) Frame(m Model, elapsed float64) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if elapsed < 0 || math.IsNaN(elapsed) {
		return 0, InvalidParam("elapsed", elapsed, "must be non-negative")
	}

	d.backlog += elapsed
	steps := 0
	for d.backlog >= d.subStep && steps < d.maxSteps {
		if m.Done() {
			d.backlog = 0
			break
		}
		if err := m.Advance(d.subStep); err != nil {
			return steps, err
		}
		d.backlog -= d.subStep
		d.simTime += d.subStep
		steps++
	}

	if steps == d.maxSteps && d.backlog >= d.subStep {
		d.dropped += d.backlog
		d.backlog = 0
	}

	d.frames++
	for _, mt := range d.metrics {
		mt.Observe(d.simTime)
	}

	return steps, nil
}

// Run drives m headless with a fixed frame interval until the model is done,
// maxFrames is reached (0 means no limit) or ctx is canceled.
func (d *Driver) Run(ctx context.Context, m Model, frame float64, maxFrames int) (int, error) {
	if frame <= 0 {
		return 0, InvalidParam("frame", frame, "must be positive")
	}

	frames := 0
	for !m.Done() {
		if maxFrames > 0 && frames >= maxFrames {
			break
		}

		select {
		case <-ctx.Done():
			return frames, ctx.Err()
		default:
		}

		if _, err := d.Frame(m, frame); err != nil {
			return frames, err
		}
		frames++
	}

	return frames, nil
}
