package service

import (
	"context"
	"sync"
	"time"

	"voltslot/pkg/logger"
)

// NoShowSweeper periodically marks confirmed bookings whose slot has ended
// as no-shows. It runs as a single background goroutine per process.
type NoShowSweeper struct {
	service  BookingService
	interval time.Duration
	timeout  time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewNoShowSweeper(service BookingService, interval, timeout time.Duration, log *logger.Logger) *NoShowSweeper {
	return &NoShowSweeper{
		service:  service,
		interval: interval,
		timeout:  timeout,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

func (w *NoShowSweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("No-show sweeper started", "interval", w.interval)
}

// Stop signals the sweeper and waits for an in-flight sweep to finish.
func (w *NoShowSweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	w.wg.Wait()
	w.log.Info("No-show sweeper stopped")
}

func (w *NoShowSweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stopCh:
			return
		}
	}
}

func (w *NoShowSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if _, err := w.service.SweepNoShows(ctx); err != nil {
		w.log.Error("No-show sweep failed", "error", err)
	}
}
