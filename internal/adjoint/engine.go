// Package adjoint computes gradients of observable expectation values with
// respect to circuit parameters by walking the recorded operation list
// backward, following the method of arXiv:2009.02823. One backward pass
// yields every parameter gradient, avoiding per-parameter forward
// re-simulation.
package adjoint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/23skdu/longbow-adjoint/internal/device"
	"github.com/23skdu/longbow-adjoint/internal/gates"
	"github.com/23skdu/longbow-adjoint/internal/observable"
	"github.com/23skdu/longbow-adjoint/internal/parallel"
	"github.com/23skdu/longbow-adjoint/internal/statevec"
)

var (
	// ErrNoTrainableParams is returned before any work begins when the
	// caller supplies an empty trainable-parameter set.
	ErrNoTrainableParams = errors.New("adjoint: no trainable parameters provided")
	// ErrJacobianSize is returned when the caller's output buffer does not
	// match numObservables x numTrainableParams.
	ErrJacobianSize = errors.New("adjoint: jacobian buffer has wrong size")
)

var tracer = otel.Tracer("github.com/23skdu/longbow-adjoint/internal/adjoint")

// Engine evaluates adjoint Jacobians on one or more devices.
type Engine struct {
	backend statevec.Backend
	pool    *device.Pool
	log     zerolog.Logger
	fanout  parallel.Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithFanout overrides the intra-device fan-out configuration.
func WithFanout(cfg parallel.Config) Option {
	return func(e *Engine) { e.fanout = cfg }
}

// WithPool supplies a device pool for the batched variant. Without one the
// engine builds a pool over every device the backend exposes.
func WithPool(p *device.Pool) Option {
	return func(e *Engine) { e.pool = p }
}

// New creates an engine bound to a state-vector backend.
func New(backend statevec.Backend, opts ...Option) *Engine {
	e := &Engine{
		backend: backend,
		log:     zerolog.Nop(),
		fanout:  parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AdjointJacobian computes the Jacobian of every observable's expectation
// value with respect to the trainable parameters, on a single device.
//
// refData is the reference state; when applyOperations is set the operation
// list is replayed forward first to produce it. jac must be preallocated to
// len(obs)*len(trainableParams) and is written row-major, one row per
// observable, columns ordered by increasing trainable position.
func (e *Engine) AdjointJacobian(ctx context.Context, refData []complex128, jac []float64,
	obs []observable.Observable, ops *OpList, trainableParams []int,
	applyOperations bool, tag statevec.DevTag) error {

	ctx, span := tracer.Start(ctx, "adjoint.jacobian")
	defer span.End()
	span.SetAttributes(
		attribute.Int("observables", len(obs)),
		attribute.Int("trainable_params", len(trainableParams)),
		attribute.Int("device", tag.DeviceID),
	)

	start := time.Now()
	err := e.run(ctx, refData, jac, obs, ops, trainableParams, applyOperations, tag, e.fanout)
	if err != nil {
		span.RecordError(err)
		return err
	}
	evaluationsTotal.Inc()
	evalDuration.Observe(time.Since(start).Seconds())
	return nil
}

func (e *Engine) run(ctx context.Context, refData []complex128, jac []float64,
	obs []observable.Observable, ops *OpList, trainableParams []int,
	applyOperations bool, tag statevec.DevTag, fanout parallel.Config) error {

	if len(trainableParams) == 0 {
		return ErrNoTrainableParams
	}
	numObservables := len(obs)
	tpSize := len(trainableParams)
	if len(jac) != numObservables*tpSize {
		return fmt.Errorf("%w: have %d, need %d", ErrJacobianSize, len(jac), numObservables*tpSize)
	}

	e.log.Info().
		Int("operations", ops.Len()).
		Int("observables", numObservables).
		Int("trainable_params", tpSize).
		Int("device", tag.DeviceID).
		Msg("adjoint jacobian evaluation started")

	cache := gates.NewCache(true, tag)
	cache.Insert(p11Key, gates.P11())

	lambda, err := e.backend.NewVector(refData, tag)
	if err != nil {
		return err
	}
	if applyOperations {
		if err := e.applyAll(lambda, ops, false, cache); err != nil {
			return err
		}
	}

	// One observable-applied copy of lambda per observable. Each branch
	// owns a disjoint copy, so the fan-out is race-free.
	hLambda := make([]statevec.Vector, numObservables)
	err = parallel.For(ctx, numObservables, fanout, func(_ context.Context, i int) error {
		v, err := lambda.Clone()
		if err != nil {
			return err
		}
		if err := obs[i].ApplyInPlace(v); err != nil {
			return fmt.Errorf("observable %d (%s): %w", i, obs[i].Name(), err)
		}
		hLambda[i] = v
		return nil
	})
	if err != nil {
		return err
	}

	mu, err := e.backend.NewZeroVector(lambda.NumQubits(), tag)
	if err != nil {
		return err
	}

	// Reverse cursors: trainableParamNumber is the Jacobian column being
	// filled, currentParamIdx counts parametric operations not yet visited.
	trainableParamNumber := tpSize - 1
	currentParamIdx := ops.NumParamOps() - 1
	tpIdx := tpSize - 1

	for opIdx := ops.Len() - 1; opIdx >= 0; opIdx-- {
		if len(ops.Params(opIdx)) > 1 {
			return fmt.Errorf("%w: %q", ErrTooManyParams, ops.Name(opIdx))
		}
		if isStatePrep(ops.Name(opIdx)) {
			continue
		}
		if tpIdx < 0 {
			break // remaining operations cannot affect the Jacobian
		}

		if err := mu.CopyFrom(lambda); err != nil {
			return err
		}
		if err := e.applyOp(lambda, ops, opIdx, true, cache); err != nil {
			return fmt.Errorf("operation %d (%s): %w", opIdx, ops.Name(opIdx), err)
		}

		if ops.HasParams(opIdx) {
			if currentParamIdx == trainableParams[tpIdx] {
				scaling, err := applyGenerator(mu, ops.Kind(opIdx), ops.Wires(opIdx), !ops.Inverse(opIdx), cache)
				if err != nil {
					return fmt.Errorf("operation %d (%s): %w", opIdx, ops.Name(opIdx), err)
				}
				if ops.Inverse(opIdx) {
					scaling = -scaling
				}

				col := trainableParamNumber
				err = parallel.For(ctx, numObservables, fanout, func(_ context.Context, i int) error {
					ip, err := hLambda[i].InnerProduct(mu)
					if err != nil {
						return err
					}
					jac[i*tpSize+col] = -2 * scaling * imag(ip)
					return nil
				})
				if err != nil {
					return err
				}
				trainableParamNumber--
				tpIdx--
			}
			currentParamIdx--
		}

		err = parallel.For(ctx, numObservables, fanout, func(_ context.Context, i int) error {
			return e.applyOp(hLambda[i], ops, opIdx, true, cache)
		})
		if err != nil {
			return err
		}
	}

	e.log.Debug().Int("device", tag.DeviceID).Msg("adjoint sweep finished")
	return nil
}

// BatchAdjointJacobian splits the observable list into contiguous chunks,
// one per pool device, and runs the single-device algorithm independently
// per chunk. Chunk workers share nothing but the pool; results are merged
// into jac only after every worker has been joined, so the output is
// deterministic regardless of completion order.
func (e *Engine) BatchAdjointJacobian(ctx context.Context, refData []complex128, jac []float64,
	obs []observable.Observable, ops *OpList, trainableParams []int,
	applyOperations bool) error {

	ctx, span := tracer.Start(ctx, "adjoint.batch")
	defer span.End()

	if len(trainableParams) == 0 {
		return ErrNoTrainableParams
	}
	numObservables := len(obs)
	tpSize := len(trainableParams)
	if len(jac) != numObservables*tpSize {
		return fmt.Errorf("%w: have %d, need %d", ErrJacobianSize, len(jac), numObservables*tpSize)
	}

	pool := e.pool
	if pool == nil {
		var err error
		pool, err = device.NewPool(e.backend.TotalDevices())
		if err != nil {
			return err
		}
	}
	numChunks := pool.TotalDevices()
	span.SetAttributes(attribute.Int("devices", numChunks), attribute.Int("observables", numObservables))

	type chunkResult struct {
		first int
		rows  []float64
		err   error
	}
	results := make([]chunkResult, numChunks)

	var wg sync.WaitGroup
	for i := 0; i < numChunks; i++ {
		first := numObservables * i / numChunks
		last := numObservables*(i+1)/numChunks - 1
		if first > last {
			continue
		}
		wg.Add(1)
		go func(chunk, first, last int) {
			defer wg.Done()
			_, cspan := tracer.Start(ctx, "adjoint.chunk")
			defer cspan.End()

			id := pool.AcquireDevice()
			tag := statevec.DevTag{DeviceID: id}
			e.log.Debug().Int("chunk", chunk).Int("device", id).
				Int("first", first).Int("last", last).Msg("chunk worker started")

			rows := make([]float64, (last-first+1)*tpSize)
			// Intra-device fan-out stays sequential here so total
			// concurrency is bounded by the device count.
			err := e.run(ctx, refData, rows, obs[first:last+1], ops, trainableParams,
				applyOperations, tag, parallel.Disabled())

			// Hand the result off before the device goes back to the pool.
			results[chunk] = chunkResult{first: first, rows: rows, err: err}
			if rerr := pool.ReleaseDevice(id); rerr != nil && err == nil {
				results[chunk].err = rerr
			}
			if err != nil {
				cspan.RecordError(err)
			}
		}(i, first, last)
	}
	wg.Wait()

	// Join-then-merge: surface the lowest-chunk failure, otherwise
	// reassemble rows at their original offsets.
	for _, res := range results {
		if res.err != nil {
			span.RecordError(res.err)
			return res.err
		}
	}
	for _, res := range results {
		copy(jac[res.first*tpSize:], res.rows)
	}
	evaluationsTotal.Inc()
	return nil
}

// applyAll replays every operation in order, honoring each record's inverse
// flag exclusive-ored with adj. State-preparation markers are skipped; the
// reference data already encodes them.
func (e *Engine) applyAll(sv statevec.Vector, ops *OpList, adj bool, cache *gates.Cache) error {
	for i := 0; i < ops.Len(); i++ {
		if isStatePrep(ops.Name(i)) {
			continue
		}
		if err := e.applyOp(sv, ops, i, adj, cache); err != nil {
			return fmt.Errorf("operation %d (%s): %w", i, ops.Name(i), err)
		}
	}
	return nil
}

// applyOp applies operation i, inverted when the stored inverse flag XOR
// adj is set. Matrix-backed operations go through the device gate cache so
// every state copy reuses a single upload.
func (e *Engine) applyOp(sv statevec.Vector, ops *OpList, i int, adj bool, cache *gates.Cache) error {
	inv := ops.Inverse(i) != adj
	if m := ops.Matrix(i); len(m) > 0 {
		key := gates.Key{Name: ops.Name(i)}
		if p := ops.Params(i); len(p) > 0 {
			key.Param = p[0]
		}
		if !cache.Exists(key) {
			cache.Insert(key, m)
		}
		buf, err := cache.Get(key)
		if err != nil {
			return err
		}
		return sv.ApplyMatrix(buf.Data(), ops.Wires(i), inv)
	}
	return sv.ApplyOperation(ops.Name(i), ops.Wires(i), inv, ops.Params(i))
}
