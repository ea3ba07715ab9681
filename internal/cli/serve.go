package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/tutu-network/timebank/internal/api"
	"github.com/tutu-network/timebank/internal/domain"
)

const (
	shutdownTimeout    = 5 * time.Second
	readHeaderTimeout  = 5 * time.Second
	bonusCheckInterval = time.Minute
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:7410)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timer behind an HTTP API",
	Long: `Run the timer as a long-lived process with an HTTP API.
The API exposes the timer status, the earn/use/stop/balance intents,
a live display stream, bonus notifications and Prometheus metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = rt.cfg.Addr()
	}

	hub := api.NewDisplayHub()
	inbox := api.NewInbox(50)
	rt.engine.SetDisplay(hub)
	rt.engine.SetNotifier(domain.NotifierFunc(func(msg string) {
		log.Printf("[serve] %s", msg)
		inbox.Notify(msg)
	}))
	rt.engine.Open()

	srv := api.NewServer(rt.engine)
	srv.SetClearer(rt.store)
	srv.SetInbox(inbox)
	srv.SetDisplayHub(hub)
	if rt.cfg.API.Metrics {
		srv.EnableMetrics()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		// Live streams end with the process context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	var wg conc.WaitGroup

	wg.Go(func() {
		log.Printf("[serve] listening on http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	})

	wg.Go(func() {
		ticker := rt.clock.NewTicker(bonusCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				rt.engine.ClaimBonusIfDue()
			}
		}
	})

	wg.Go(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[serve] shutdown: %v", err)
		}
	})

	wg.Wait()
	log.Printf("[serve] stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}
