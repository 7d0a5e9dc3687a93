package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/daily-hours/internal/config"
	"github.com/Tiliavir/daily-hours/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API over HTTP",
	Long: `Serve the JSON API over HTTP. With the supabase backend every request
must carry "Authorization: Bearer <access token>"; with the local backends all
requests act as the configured user.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default web.addr from the config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger()
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	var auth web.Authenticator
	var a *app
	if cfg.Backend == config.BackendSupabase {
		auth = &web.SupabaseAuth{Client: supabaseClient(cfg), Log: logger}
	} else {
		a = openApp(cmd.Context())
		defer a.close()
		auth = web.LocalAuth{UserID: a.userID, Store: a.adapter}
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Web.Addr
	}
	srv := web.NewServer(auth, web.WithLogger(logger))
	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- httpSrv.ListenAndServe() }()
	fmt.Printf("Serving on http://%s (%s backend)\n", addr, cfg.Backend)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	if err := srv.Flush(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: not all changes were saved: %v\n", err)
	}
	return nil
}
