package colorconv

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Stats holds batch counters.
type Stats struct {
	Processed int64
	Failed    int64
}

// ColorProcessor implements batch conversion orchestration.
// It reads Line(s) from Inputer, converts them with Converter and uses Outputer to save result.
type ColorProcessor struct {
	// accessed atomically, kept first for 64-bit alignment.
	processed int64
	failed    int64

	input  Inputer
	output Outputer
	conv   *Converter
	log    zerolog.Logger
	wg     sync.WaitGroup
}

// NewColorProcessor returns new instance of ColorProcessor.
func NewColorProcessor(l zerolog.Logger, in Inputer, o Outputer, c *Converter) *ColorProcessor {
	return &ColorProcessor{
		log:    l.With().Str("component", "colorproc").Logger(),
		input:  in,
		output: o,
		conv:   c}
}

// Start launches n parallel processing goroutines and waits completion.
func (cp *ColorProcessor) Start(ctx context.Context, n int) Stats {

	if n < 1 {
		n = 1
	}

	started := time.Now()
	for i := 0; i < n; i++ {
		cp.wg.Add(1)
		go cp.runner(ctx, i+1)
	}
	cp.log.Debug().Int("amount", n).Msg("runners are started")
	cp.wg.Wait()

	st := cp.Stats()
	cp.log.Info().Int64("processed", st.Processed).
		Int64("failed", st.Failed).
		Str("dur", time.Since(started).String()).Msg("batch completed")
	return st
}

// Stats returns current counters.
func (cp *ColorProcessor) Stats() Stats {
	return Stats{
		Processed: atomic.LoadInt64(&cp.processed),
		Failed:    atomic.LoadInt64(&cp.failed),
	}
}

func (cp *ColorProcessor) runner(ctx context.Context, num int) {

	defer cp.wg.Done()
	log := cp.log.With().Int("runner", num).Logger()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("interrupted")
			return
		case line, ok := <-cp.input.Next():
			if !ok {
				// Inputer channel is closed due to reaching EOF. Stop the runner.
				return
			}

			res, err := cp.convert(line)
			if err != nil {
				atomic.AddInt64(&cp.failed, 1)
				log.Error().Int("line", line.Num).Str("input", line.Text).Str("errmsg", err.Error()).Msg("conversion failed")
				continue
			}

			if err := cp.output.Save(res); err != nil {
				atomic.AddInt64(&cp.failed, 1)
				log.Error().Int("line", line.Num).Str("errmsg", err.Error()).Msg("result saving failed")
				continue
			}
			atomic.AddInt64(&cp.processed, 1)
			log.Debug().Int("line", line.Num).Str("hex", res.Packed.Hex()).Msg("line converted")
		}
	}
}

func (cp *ColorProcessor) convert(line Line) (*Result, error) {
	r, g, b, err := ParseTriple(line.Text)
	if err != nil {
		return nil, err
	}
	return cp.conv.Convert(r, g, b)
}
