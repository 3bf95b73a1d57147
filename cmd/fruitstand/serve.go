package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muir/fruitstand/fruit"
	"github.com/muir/fruitstand/npoint"
	"github.com/muir/fruitstand/nserve"
	"github.com/muir/fruitstand/nvelope"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fruit API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd.Flags(), configFile)
		if err != nil {
			return err
		}
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(signals)
		return serve(cmd.Context(), c, newLogger(c, cmd.ErrOrStderr()), signals)
	},
}

func init() {
	addServeFlags(serveCmd.Flags())
}

// server is the running state of the serve command.  The store
// and listener exist only between Start and Stop.
type server struct {
	config   Config
	log      *slog.Logger
	store    *fruit.Store
	listener net.Listener
	http     *http.Server
	failed   chan error
}

func newApp(c Config, log *slog.Logger) (*nserve.App, *server, error) {
	s := &server{
		config: c,
		log:    log,
		failed: make(chan error, 1),
	}
	app, err := nserve.CreateApp("fruitstand", s.register)
	return app, s, err
}

func (s *server) register(app *nserve.App) error {
	app.On(nserve.Start, s.start)
	app.On(nserve.Shutdown, func(context.Context, *nserve.App) error {
		s.log.Info("Shutdown complete")
		return nil
	})
	return nil
}

func (s *server) handler() http.Handler {
	log := nvelope.LoggerFromSlog(s.log)
	encoders := nvelope.Encoders{nvelope.EncodeJSON, nvelope.EncodeYAML}.
		With(nvelope.WithDetailedErrors(s.config.Development()))

	router := mux.NewRouter()
	router.NotFoundHandler = statusOnly(http.StatusNotFound)
	router.MethodNotAllowedHandler = statusOnly(http.StatusMethodNotAllowed)

	svc := npoint.RegisterService("fruitstand", router,
		npoint.WithLogger(log),
		npoint.WithEncoders(encoders...))
	fruit.Register(svc, s.store, fruit.Options{
		Strict: s.config.Strict,
		Log:    log,
	})

	return nvelope.CombineMiddleware(
		nvelope.RequestID,
		nvelope.AccessLog(log),
		nvelope.StatusPages(encoders, log),
	)(router.ServeHTTP)
}

// statusOnly leaves the body for StatusPages to fill in.
func statusOnly(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	})
}

func (s *server) start(_ context.Context, app *nserve.App) error {
	s.store = fruit.NewStore()
	app.On(nserve.Stop, func(context.Context, *nserve.App) error {
		s.log.Info("Store released", "fruit", s.store.Len())
		return nil
	})

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.config.Addr)
	}
	s.listener = ln
	s.http = &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	go func() {
		err := s.http.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.failed <- err
		}
	}()
	app.On(nserve.Stop, s.stop)
	s.log.Info("Listening",
		"addr", ln.Addr().String(),
		"strict", s.config.Strict,
		"development", s.config.Development())
	return nil
}

func (s *server) stop(ctx context.Context, _ *nserve.App) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()
	s.log.Info("Draining requests", "timeout", s.config.ShutdownTimeout.String())
	return errors.Wrap(s.http.Shutdown(ctx), "http shutdown")
}

// Addr is valid after Start.
func (s *server) Addr() string {
	return s.listener.Addr().String()
}

// serve runs until a signal arrives, the context is done, or the
// listener fails.  Signals received before Start completes are kept
// in the channel and stop the server right after it starts.
func serve(ctx context.Context, c Config, log *slog.Logger, signals <-chan os.Signal) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app, s, err := newApp(c, log)
	if err != nil {
		return err
	}
	if err := app.Do(nserve.Start); err != nil {
		return err
	}

	var runErr error
	select {
	case sig := <-signals:
		log.Info("Stopping", "signal", sig.String())
	case runErr = <-s.failed:
		log.Error("Server failed", "error", runErr)
	case <-ctx.Done():
		log.Info("Stopping", "reason", ctx.Err().Error())
	}

	if err := app.Do(nserve.Stop); err != nil {
		// Stop's errors have already run Shutdown
		return err
	}
	if err := app.Do(nserve.Shutdown); err != nil {
		return err
	}
	return runErr
}
