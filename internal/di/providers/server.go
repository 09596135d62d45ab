package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/microsdeck/microsdeck-server/internal/api"
	"github.com/microsdeck/microsdeck-server/internal/logger"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the query API server on the fixed port.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler := api.NewServer(storeHandle.Store, log.Logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
