package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/microsdeck/microsdeck-server/internal/devmon"
	"github.com/microsdeck/microsdeck-server/internal/logger"
	"github.com/microsdeck/microsdeck-server/internal/reconciler"
	"github.com/microsdeck/microsdeck-server/internal/scanner"
)

// MonitorHandle wraps the device monitor with shutdown capability.
type MonitorHandle struct {
	*devmon.Monitor
}

// Shutdown implements do.Shutdownable.
func (h *MonitorHandle) Shutdown() error {
	return h.Stop()
}

// ProvideMonitor provides the device event monitor. It is created unstarted;
// the reconcile loop starts it after the startup tick so no event can win a
// race against the initial scan.
func ProvideMonitor(i do.Injector) (*MonitorHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	mon, err := devmon.New(log.Logger, devmon.Options{
		MountPath: scanner.DefaultMountPath,
	})
	if err != nil {
		return nil, err
	}

	return &MonitorHandle{Monitor: mon}, nil
}

// ReconcileLoopHandle owns the reconcile loop goroutine.
type ReconcileLoopHandle struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ReconcileLoopHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideReconcileLoop provides the running reconcile loop. The startup tick
// runs synchronously here: if a card is already mounted at boot its contents
// are in the store before the monitor delivers a single event.
func ProvideReconcileLoop(i do.Injector) (*ReconcileLoopHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	monHandle := do.MustInvoke[*MonitorHandle](i)

	cardScanner := scanner.New(scanner.DefaultMountPath, log.Logger)
	rec := reconciler.New(cardScanner, storeHandle.Store, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())

	if err := rec.Tick(ctx); err != nil {
		log.Error("Startup reconciliation failed", "error", err)
	}

	if err := monHandle.Start(ctx); err != nil {
		cancel()
		return nil, err
	}

	go func() {
		err := rec.Run(ctx, monHandle.Monitor)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		// The daemon is blind without its event source. Exit non-zero and
		// let the plugin loader restart us.
		log.Fatal("Device monitor failed", "error", err)
	}()

	log.Info("Reconcile loop started")

	return &ReconcileLoopHandle{cancel: cancel}, nil
}
