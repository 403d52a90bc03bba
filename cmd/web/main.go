package main

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/tomz197/breakpong/internal/config"
	"github.com/tomz197/breakpong/internal/logging"
)

//go:embed index.html
var htmlPage string

func main() {
	fs := pflag.NewFlagSet("web", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		logrus.WithError(err).Fatal("config error")
	}
	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("logging error")
	}
	defer closer.Close()

	addr := net.JoinHostPort(cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newPageHandler(cfg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting web server on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
}

// renderPage fills the landing page with the SSH address players connect to.
func renderPage(sshHost, sshPort string) string {
	return strings.NewReplacer(
		"{{.SSHHost}}", sshHost,
		"{{.SSHPort}}", sshPort,
	).Replace(htmlPage)
}

// newPageHandler serves the landing page on / and 404s elsewhere.
func newPageHandler(cfg config.Config, logger logrus.FieldLogger) http.Handler {
	page := renderPage(cfg.Web.DisplayHost, cfg.SSH.Port)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		logger.WithFields(logrus.Fields{
			"remote": r.RemoteAddr,
			"agent":  r.UserAgent(),
		}).Debug("landing page")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})
	return mux
}
