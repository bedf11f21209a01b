package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"PixelCtl/internal/config"
	"PixelCtl/internal/views"
)

var logger *zap.SugaredLogger

func init() {
	logger = zap.NewNop().Sugar()
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	return l.Sugar(), nil
}

func main() {
	configPath := flag.String("config", "pixelctl.yaml", "path to the yaml config file")
	listen := flag.String("listen", "", "address to serve the api on, overrides the config")
	deviceURL := flag.String("device", "", "websocket url of the matrix, overrides the config")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	cfg, cfgErr := config.Load(*configPath)
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *deviceURL != "" {
		cfg.Device = *deviceURL
	}
	cfg.Debug = cfg.Debug || *debug

	l, err := newLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	logger = l
	defer logger.Sync()

	if cfgErr != nil {
		logger.Panicw("unable to load config",
			"path", *configPath,
			"err", cfgErr)
	}

	vs, err := views.Open(cfg.ViewsFile)
	if err != nil {
		logger.Panicw("unable to open saved views",
			"path", cfg.ViewsFile,
			"err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPanel(cfg, vs)
	p.start(ctx)
	h := newHub(p)

	go newDevice(cfg.Device, cfg.ReconnectDelay, p).run(ctx)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: newRouter(p, h),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Infow("serving api",
		"listen", cfg.Listen,
		"device", cfg.Device)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Panicw("unable to serve api",
			"listen", cfg.Listen,
			"err", err)
	}
}
