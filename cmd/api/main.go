package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/BrandVoice/internal/app"
	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/akolanti/BrandVoice/internal/handlers"
	"github.com/akolanti/BrandVoice/internal/job"
	"github.com/akolanti/BrandVoice/internal/middleware"
	"github.com/akolanti/BrandVoice/internal/server"
	"github.com/akolanti/BrandVoice/internal/usage"
	"github.com/akolanti/BrandVoice/internal/worker"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
)

var (
	configPath        string
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address (overrides config)")
	flag.Parse()

	settings, err := config.Load(configPath)
	logger_i.Init(settings.Server.Production)
	var logger = logger_i.NewLogger("main")
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.Server.ListenAddr = listenAddr
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	deps, err := app.Build(serviceContext, settings)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		return
	}

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
		JobStore:          deps.JobStore,
	})

	//init worker pool
	worker.InitServices(service, deps.Rag)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	handler := handlers.New(handlers.Deps{
		Jobs:      service,
		Rag:       deps.Rag,
		Documents: deps.Store,
		Brands:    deps.Store,
		Gate:      usage.NewGate(deps.Usage, settings.Usage.MonthlyWordQuota),
	})
	router := server.Routes(handler, middleware.NewChain(settings))

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings.Server.ListenAddr, router)

	<-stopExecution
	logger.Info("Server stopped")
}
