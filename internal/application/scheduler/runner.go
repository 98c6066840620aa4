// Package scheduler ejecuta periódicamente las tareas de fondo: generación de pedidos recurrentes,
// vencimiento de cotizaciones y escaneo de cartera vencida.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job tarea programada.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Recorder registra el resultado de cada ejecución (metrics.Metrics).
type Recorder interface {
	JobRun(job string, err error)
}

// Runner corre todas las tareas en cada tick, una tras otra. Un tick no empieza si el anterior
// sigue en curso.
type Runner struct {
	jobs     []Job
	interval time.Duration
	recorder Recorder
	log      zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running sync.Mutex
}

// NewRunner construye el runner. recorder puede ser nil.
func NewRunner(interval time.Duration, recorder Recorder, log zerolog.Logger, jobs ...Job) *Runner {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Runner{
		jobs:     jobs,
		interval: interval,
		recorder: recorder,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Start lanza el ciclo en segundo plano; la primera corrida es inmediata.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		r.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.tick(ctx)
			}
		}
	}()
	r.log.Info().Dur("interval", r.interval).Int("jobs", len(r.jobs)).Msg("scheduler iniciado")
}

// Stop cancela el ciclo y espera a que termine la corrida en curso.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.log.Info().Msg("scheduler detenido")
}

func (r *Runner) tick(ctx context.Context) {
	if !r.running.TryLock() {
		r.log.Warn().Msg("corrida anterior aún en curso, tick omitido")
		return
	}
	defer r.running.Unlock()
	_ = r.RunOnce(ctx)
}

// RunOnce ejecuta todas las tareas una vez. El error de una tarea no impide las siguientes.
func (r *Runner) RunOnce(ctx context.Context) error {
	var errs []error
	for _, job := range r.jobs {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		err := r.safeRun(ctx, job)
		if r.recorder != nil {
			r.recorder.JobRun(job.Name, err)
		}
		if err != nil {
			r.log.Error().Err(err).Str("job", job.Name).Msg("tarea programada falló")
			errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
			continue
		}
		r.log.Debug().Str("job", job.Name).Dur("took", time.Since(start)).Msg("tarea programada completada")
	}
	return errors.Join(errs...)
}

func (r *Runner) safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pánico: %v", rec)
		}
	}()
	return job.Run(ctx)
}
