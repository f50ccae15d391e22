// Package metrics exports frame timing and engine memory usage to
// Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/milk9111/tileworld/engine"
)

// Exporter holds the game's collectors on a private registry.
type Exporter struct {
	registry *prometheus.Registry

	frameSeconds prometheus.Histogram
	frames       prometheus.Counter
	frameErrors  prometheus.Counter
	reloads      *prometheus.CounterVec

	permanentUsed prometheus.Gauge
	permanentSize prometheus.Gauge
	transientUsed prometheus.Gauge
	chunks        prometheus.Gauge
	entities      prometheus.Gauge
	liveEntities  prometheus.Gauge
}

func New(namespace string) *Exporter {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	e := &Exporter{
		registry: prometheus.NewRegistry(),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent in UpdateAndRender.",
			Buckets:   []float64{0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1},
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames rendered.",
		}),
		frameErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_errors_total",
			Help:      "Frames that returned an error.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_reloads_total",
			Help:      "Asset reloads by result.",
		}, []string{"result"}),
		permanentUsed: gauge("permanent_arena_used_bytes", "Bytes handed out from permanent storage."),
		permanentSize: gauge("permanent_arena_size_bytes", "Size of permanent storage."),
		transientUsed: gauge("transient_arena_used_bytes", "Bytes of transient storage used by the last frame."),
		chunks:        gauge("tile_chunks", "Tile chunks with materialized storage."),
		entities:      gauge("entities", "Entities added to the store."),
		liveEntities:  gauge("live_entities", "Entities that currently exist."),
	}

	e.registry.MustRegister(
		e.frameSeconds, e.frames, e.frameErrors, e.reloads,
		e.permanentUsed, e.permanentSize, e.transientUsed,
		e.chunks, e.entities, e.liveEntities,
	)
	return e
}

// ObserveFrame records one call to UpdateAndRender.
func (e *Exporter) ObserveFrame(d time.Duration, s engine.Stats, err error) {
	e.frames.Inc()
	e.frameSeconds.Observe(d.Seconds())
	if err != nil {
		e.frameErrors.Inc()
	}
	if !s.Initialized {
		return
	}
	e.permanentUsed.Set(float64(s.PermanentUsed))
	e.permanentSize.Set(float64(s.PermanentSize))
	e.transientUsed.Set(float64(s.TransientUsed))
	e.chunks.Set(float64(s.Chunks))
	e.entities.Set(float64(s.Entities))
	e.liveEntities.Set(float64(s.LiveEntities))
}

// ObserveReload records a hot reload attempt.
func (e *Exporter) ObserveReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	e.reloads.WithLabelValues(result).Inc()
}

func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (e *Exporter) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
