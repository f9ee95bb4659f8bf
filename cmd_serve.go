package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proxymanager/backend/api"
	"proxymanager/backend/config"
	"proxymanager/backend/repository/events"
	"proxymanager/backend/service"
	"proxymanager/backend/service/sysproxy"
	"proxymanager/backend/tasks"
)

var commandServe = &cobra.Command{
	Use:   "serve",
	Short: "Serve the proxy_manager channel and HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	listenAddr    string
	guardInterval time.Duration
	cleanOnExit   bool
)

func init() {
	flags := commandServe.Flags()
	flags.StringVarP(&listenAddr, "listen", "l", config.DefaultListen, "HTTP listen address")
	flags.DurationVar(&guardInterval, "guard-interval", 0, "re-apply the proxy when it drifts, checking at this interval (0 disables)")
	flags.BoolVar(&cleanOnExit, "clean-on-exit", false, "clear the system proxy on shutdown")
	mainCommand.AddCommand(commandServe)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Listen = listenAddr
	}
	if flags.Changed("guard-interval") {
		cfg.Guard.Interval = guardInterval.String()
	}
	if flags.Changed("clean-on-exit") {
		cfg.CleanOnExit = cleanOnExit
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Dev {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	rt, err := newRuntime(cfg, true)
	if err != nil {
		return err
	}
	defer rt.Close()
	log := rt.logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	facade := service.NewFacade(rt.proxy, rt.log, log)

	interval, _ := cfg.GuardInterval()
	auditProxyEvents(rt.bus, log)
	tasks.NewGuard(rt.proxy, interval, log).Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewRouter(facade, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	cleanupDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		log.Info("收到退出信号，正在清理...")

		if cfg.CleanOnExit {
			clearOnExit(rt.proxy, log)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("graceful shutdown failed", zap.Error(err))
		}
		close(cleanupDone)
	}()

	log.Info("server listening",
		zap.String("addr", srv.Addr),
		zap.String("platform", facade.PlatformVersion()),
		zap.Bool("dryRun", cfg.DryRun),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-cleanupDone
		return err
	}
	<-cleanupDone
	return nil
}

// clearOnExit clears the system proxy only when this process set it last, so a server
// that failed to start never wipes a proxy owned by someone else.
func clearOnExit(proxy *sysproxy.Controller, log *zap.Logger) bool {
	if _, active := proxy.Target(); !active {
		log.Info("system proxy not set by this process, leaving it unchanged")
		return false
	}
	report := proxy.ClearProxy()
	log.Info("system proxy cleared on exit",
		zap.Bool("aborted", report.Aborted),
		zap.Int("failed", len(report.Failed())),
	)
	return true
}

// auditProxyEvents 将系统代理变更写入应用日志
func auditProxyEvents(bus *events.Bus, log *zap.Logger) {
	log = log.Named("Audit")
	bus.SubscribeAll(func(event events.Event) {
		e, ok := event.(events.ProxyEvent)
		if !ok {
			return
		}
		log.Info(string(e.EventType),
			zap.String("op", e.Report.OperationID),
			zap.String("address", string(e.Address)),
			zap.Bool("aborted", e.Report.Aborted),
			zap.Int("failed", len(e.Report.Failed())),
			zap.Bool("notified", e.Report.Notified),
		)
	})
}
