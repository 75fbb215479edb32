package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/ton-connect/timeserver/internal"
	"github.com/ton-connect/timeserver/internal/app"
	"github.com/ton-connect/timeserver/internal/clock"
	"github.com/ton-connect/timeserver/internal/config"
	"github.com/ton-connect/timeserver/internal/ntp"
	"github.com/ton-connect/timeserver/internal/tools"
	"github.com/ton-connect/timeserver/internal/utils"
	"golang.org/x/exp/slices"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.WithFields(log.Fields{
		"version":   internal.TimeserverVersionRevision,
		"transport": cfg.Transport,
	}).Info("Timeserver is starting")

	ntpClient := ntp.NewClient(ntp.Options{
		DefaultServer: cfg.NTPDefaultServer,
		Version:       cfg.NTPVersion,
		HealthTimeout: time.Duration(cfg.NTPHealthTimeout) * time.Second,
	})

	mcpServer, err := tools.NewServer(tools.Options{
		Name:             cfg.ServerName,
		Version:          internal.TimeserverVersion,
		LocalToolName:    cfg.LocalTimeTool,
		DefaultNTPServer: cfg.NTPDefaultServer,
		Clock:            clock.NewSystemClock(cfg.Timezone),
		NTP:              ntpClient,
	})
	if err != nil {
		log.Fatalf("failed to create tool server: %v", err)
	}

	switch cfg.Transport {
	case config.TransportStdio:
		if err := app.ServeStdio(mcpServer); err != nil {
			log.Fatalf("stdio server stopped: %v", err)
		}
	case config.TransportHTTP:
		serveHTTP(cfg, mcpServer, ntpClient)
	}
}

func serveHTTP(cfg config.Config, mcpServer *server.MCPServer, ntpClient *ntp.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.InitMetrics(cfg.Transport)

	healthManager := app.NewHealthManager()
	utils.RunWithRecovery("ntp health monitoring", func() {
		healthManager.StartHealthMonitoring(ctx, ntpClient, time.Duration(cfg.NTPHealthInterval)*time.Second)
	})

	go func() {
		mux := app.NewMetricsMux(healthManager, cfg.PprofEnabled)
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", cfg.MetricsPort), mux))
	}()

	extractor, err := utils.NewRealIPExtractor(cfg.TrustedProxyRanges)
	if err != nil {
		log.Warnf("failed to create realIPExtractor: %v, using defaults", err)
		extractor, _ = utils.NewRealIPExtractor([]string{})
	}

	e := app.NewHTTPServer(app.NewStreamableHandler(mcpServer, cfg.MCPEndpoint), app.HTTPOptions{
		Endpoint:         cfg.MCPEndpoint,
		RPSLimit:         cfg.RPSLimit,
		ConnectionsLimit: cfg.ConnectionsLimit,
		BypassTokens:     cfg.RateLimitsByPassToken,
		CorsEnable:       cfg.CorsEnable,
		Extractor:        extractor,
	})

	var existedPaths []string
	for _, r := range e.Routes() {
		existedPaths = append(existedPaths, r.Path)
	}
	p := prometheus.NewPrometheus("http", func(c echo.Context) bool {
		return !slices.Contains(existedPaths, c.Path())
	})
	e.Use(p.HandlerFunc)

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	go func() {
		log.WithFields(log.Fields{
			"addr":     addr,
			"endpoint": cfg.MCPEndpoint,
			"tls":      cfg.SelfSignedTLS,
		}).Info("Serving tools over streamable HTTP")

		var err error
		if cfg.SelfSignedTLS {
			err = startTLS(e, addr, cfg.Host)
		} else {
			err = e.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http server shutdown: %v", err)
	}
}

func startTLS(e *echo.Echo, addr, host string) error {
	cert, key, err := utils.GenerateSelfSignedCertificate(host)
	if err != nil {
		return err
	}
	return e.StartTLS(addr, cert, key)
}
