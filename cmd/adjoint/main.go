package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/23skdu/longbow-adjoint/internal/adjoint"
	"github.com/23skdu/longbow-adjoint/internal/circuit"
	"github.com/23skdu/longbow-adjoint/internal/device"
	"github.com/23skdu/longbow-adjoint/internal/observable"
	"github.com/23skdu/longbow-adjoint/internal/statevec"
)

var (
	circuitPath = flag.String("circuit", "", "Path to a CBOR circuit file (omit for the built-in demo)")
	numDevices  = flag.Int("devices", 1, "Number of emulated device slots")
	useBatch    = flag.Bool("batch", false, "Use the device-pool batched evaluation")
	theta       = flag.Float64("theta", math.Pi/3, "Rotation angle for the built-in demo circuit")
	listenAddr  = flag.String("listen", "", "Address to serve prometheus metrics on (e.g. :9090)")
	enableOTel  = flag.Bool("otel", false, "Enable OpenTelemetry tracing (stdout)")
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	flag.Parse()

	if *enableOTel {
		shutdown, err := initTracer()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer shutdown(context.Background())
	}

	if *listenAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info().Str("addr", *listenAddr).Msg("Serving prometheus metrics")
			if err := http.ListenAndServe(*listenAddr, nil); err != nil {
				log.Error().Err(err).Msg("Metrics listener failed")
			}
		}()
	}

	var (
		qubits    int
		ops       *adjoint.OpList
		trainable []int
		err       error
	)
	if *circuitPath != "" {
		var f *circuit.File
		f, err = circuit.LoadFile(*circuitPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *circuitPath).Msg("Failed to load circuit")
		}
		qubits = f.Qubits
		trainable = f.Trainable
		ops, err = f.OpList()
	} else {
		qubits, ops, trainable, err = demoCircuit(*theta)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build operation list")
	}

	backend := statevec.NewEmulated(*numDevices)
	pool, err := device.NewPool(*numDevices)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create device pool")
	}
	engine := adjoint.New(backend, adjoint.WithLogger(log.Logger), adjoint.WithPool(pool))

	// Measure PauliZ on every qubit.
	obs := make([]observable.Observable, qubits)
	for w := 0; w < qubits; w++ {
		obs[w] = observable.NewNamed("PauliZ", []int{w})
	}

	ref := make([]complex128, 1<<qubits)
	ref[0] = 1

	jac := make([]float64, len(obs)*len(trainable))
	ctx := context.Background()
	start := time.Now()
	if *useBatch {
		err = engine.BatchAdjointJacobian(ctx, ref, jac, obs, ops, trainable, true)
	} else {
		err = engine.AdjointJacobian(ctx, ref, jac, obs, ops, trainable, true, statevec.DevTag{})
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Jacobian evaluation failed")
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("Jacobian evaluation done")

	for i := range obs {
		row := jac[i*len(trainable) : (i+1)*len(trainable)]
		fmt.Printf("d<%s>/dtheta = %v\n", obs[i].Name(), row)
	}
}

// demoCircuit builds RX(theta) on wire 0 followed by a CNOT, with the
// rotation angle trainable.
func demoCircuit(theta float64) (int, *adjoint.OpList, []int, error) {
	const qubits = 2
	ops, err := adjoint.NewOpList(
		[]string{"RX", "CNOT"},
		[][]float64{{theta}, {}},
		[][]int{{0}, {0, 1}},
		[]bool{false, false},
		nil,
	)
	return qubits, ops, []int{0}, err
}

func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("adjoint"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}
