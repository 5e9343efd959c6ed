package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/BrandVoice/internal/adapter/utils"
	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/handlers"
	"github.com/akolanti/BrandVoice/internal/middleware"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func Routes(h *handlers.Handler, chain middleware.Chain) *chi.Mux {
	r := utils.NewRouter()

	r.Get("/", chain.WrapPublic(handlers.GetHandler))
	r.Post("/brands", chain.Wrap(h.CreateBrand))
	r.Get("/brands/{brandId}/profile", chain.Wrap(h.GetProfile))
	r.Post("/brands/{brandId}/profile", chain.Wrap(h.RebuildProfile))
	r.Post("/brands/{brandId}/documents", chain.Wrap(h.CreateDocument))
	r.Post("/brands/{brandId}/generate", chain.Wrap(h.Generate))
	r.Get("/documents/{id}", chain.Wrap(h.GetDocument))
	r.Get("/jobs/{id}", chain.Wrap(h.GetJobStatus))
	r.Post("/webhooks/documents", chain.WrapWebhook(h.DocumentWebhook))
	return r
}

func CreateServer(listenAddr string, handler http.Handler) {
	_logger = logger_i.NewLogger("server")

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err, "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	log := logger_i.NewLogger("server")
	log.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				log.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		log.Info("Gracefully shut down")
	case <-ctx.Done():
		log.Info("Force Shut down")
		os.Exit(1)
	}
}
