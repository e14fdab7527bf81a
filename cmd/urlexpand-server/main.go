// Command urlexpand-server exposes the expander as a small JSON web
// service with optional redis result caching and tracing.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/extra/redisotel"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/urlexpand/urlexpand"
	"github.com/urlexpand/urlexpand/cachedexpander"
	"github.com/urlexpand/urlexpand/httphandler"
	"github.com/urlexpand/urlexpand/safedialer"
	"github.com/urlexpand/urlexpand/telemetry"
)

const (
	cacheTTL        = 120 * time.Hour
	defaultPort     = "8080"
	requestTimeout  = 10 * time.Second
	shutdownTimeout = requestTimeout + 1*time.Second

	// dialer
	dialTimeout = 1 * time.Second

	// transport
	transportIdleConnTimeout     = 90 * time.Second
	transportMaxIdleConnsPerHost = 100
	transportTLSHandshakeTimeout = 1 * time.Second
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	stopTelemetry := initTelemetry(logger)
	defer stopTelemetry()

	expander := initExpander(logger)
	mux := http.NewServeMux()
	mux.Handle("/expand", httphandler.New(expander))
	mux.Handle("/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	srv := &http.Server{
		Addr:    net.JoinHostPort("", port),
		Handler: applyMiddleware(mux, logger),
	}

	listenAndServeGracefully(srv, shutdownTimeout, logger)
}

func listenAndServeGracefully(srv *http.Server, shutdownTimeout time.Duration, logger zerolog.Logger) {
	// exitCh will be closed when it is safe to exit, after the server
	// has had a chance to shut down gracefully
	exitCh := make(chan struct{})

	go func() {
		// wait for SIGTERM or SIGINT
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh

		// start graceful shutdown
		logger.Info().Msgf("shutdown started by signal: %s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}

		// indicate that it is now safe to exit
		close(exitCh)
	}()

	// start server
	logger.Info().Msgf("listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("listen error")
	}

	// wait until it is safe to exit
	<-exitCh
}

func applyMiddleware(h http.Handler, l zerolog.Logger) http.Handler {
	h = hlog.AccessHandler(accessLogger)(h)
	h = hlog.NewHandler(l)(h)
	h = otelhttp.NewHandler(h, "urlexpand-server")
	return h
}

func accessLogger(r *http.Request, status int, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("remote_addr", r.RemoteAddr).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Send()
}

func initExpander(logger zerolog.Logger) urlexpand.Interface {
	transport := telemetry.WrapTransport(&http.Transport{
		DialContext: (&net.Dialer{
			Control: safedialer.Control,
			Timeout: dialTimeout,
		}).DialContext,
		IdleConnTimeout:     transportIdleConnTimeout,
		MaxIdleConnsPerHost: transportMaxIdleConnsPerHost,
		MaxIdleConns:        transportMaxIdleConnsPerHost * 2,
		TLSHandshakeTimeout: transportTLSHandshakeTimeout,
	})
	redisCache := initRedisCache(logger)

	var e urlexpand.Interface = urlexpand.New(transport, requestTimeout)
	if redisCache != nil {
		e = cachedexpander.New(e, cachedexpander.NewRedisCache(redisCache, cacheTTL))
	}
	return e
}

func initRedisCache(logger zerolog.Logger) *cache.Cache {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		logger.Info().Msg("set REDIS_URL to enable caching")
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Error().Err(err).Msg("REDIS_URL invalid, cache disabled")
		return nil
	}

	client := redis.NewClient(opt)
	client.AddHook(redisotel.TracingHook{})
	return cache.New(&cache.Options{Redis: client})
}

func initTelemetry(logger zerolog.Logger) func() {
	if os.Getenv("TRACE_STDOUT") == "" {
		logger.Info().Msg("set TRACE_STDOUT to emit traces")
		return func() {}
	}

	exporter, err := stdout.NewExporter(stdout.WithPrettyPrint())
	if err != nil {
		logger.Error().Err(err).Msg("trace exporter init failed, tracing disabled")
		return func() {}
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("trace shutdown error")
		}
	}
}
