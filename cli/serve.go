package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nstehr/venture/venture-core/agent"
	"github.com/nstehr/venture/venture-core/decisionlog"
	"github.com/nstehr/venture/venture-core/ipc"
)

const banner = `
██╗   ██╗███████╗███╗   ██╗████████╗██╗   ██╗██████╗ ███████╗
██║   ██║██╔════╝████╗  ██║╚══██╔══╝██║   ██║██╔══██╗██╔════╝
██║   ██║█████╗  ██╔██╗ ██║   ██║   ██║   ██║██████╔╝█████╗
╚██╗ ██╔╝██╔══╝  ██║╚██╗██║   ██║   ██║   ██║██╔══██╗██╔══╝
 ╚████╔╝ ███████╗██║ ╚████║   ██║   ╚██████╔╝██║  ██║███████╗
  ╚═══╝  ╚══════╝╚═╝  ╚═══╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚══════╝

Archetype-Driven Business Intelligence`

var _ agent.Recorder = (*decisionlog.Store)(nil)

var (
	socketPath     string
	wsAddr         string
	workers        int
	noRecord       bool
	reloadInterval time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sidecar on a unix socket (and optionally WebSocket)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVarP(&socketPath, "socket", "s", "", "Unix socket path (default: $VENTURE_SOCKET or /tmp/venture.sock)")
	cmd.Flags().StringVar(&wsAddr, "ws", "", "Also serve WebSocket clients on this address, e.g. :8081")
	cmd.Flags().IntVar(&workers, "workers", 4, "Goroutines used to decide a tick")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Don't write decisions to the decision log")
	cmd.Flags().DurationVar(&reloadInterval, "reload-interval", 0, "Reload niche content on this interval (0 = only on SIGHUP)")

	RootCmd.AddCommand(cmd)
}

func getSocketPath() string {
	if socketPath != "" {
		return socketPath
	}
	if env := os.Getenv("VENTURE_SOCKET"); env != "" {
		return env
	}
	return "/tmp/venture.sock"
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.ErrOrStderr(), banner)
	slog.Info("starting venture-core")

	registry, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("load niches: %w", err)
	}
	slog.Info("niche content loaded", "niches", len(registry.Niches()))

	var recorder agent.Recorder
	if !noRecord {
		store, err := openStore()
		if err != nil {
			return fmt.Errorf("open decision log: %w", err)
		}
		defer store.Close()
		recorder = store
		slog.Info("recording decisions", "db", getDBPath())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reloader := agent.NewReloader(registry, loadNiches, reloadInterval)
	go reloader.Start(ctx)
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				slog.Info("SIGHUP received, reloading niche content")
				reloader.Trigger()
			}
		}
	}()

	serveConn := func(conn ipc.Conn) {
		c := ipc.NewConnection(conn, nil)
		s := agent.New(ctx, c, registry, recorder)
		s.Workers = workers
		s.Register()
		c.ReadLoop()
	}

	path := getSocketPath()
	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clean up socket %s: %w", path, err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", path, err)
	}
	defer os.Remove(path)
	slog.Info("listening on domain socket", "path", path)

	go acceptLoop(ctx, listener, serveConn)

	var httpSrv *http.Server
	if wsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", ipc.WebSocketHandler(serveConn))
		httpSrv = &http.Server{Addr: wsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			slog.Info("listening for websocket clients", "addr", wsAddr, "path", "/ws")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("websocket server failed", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")
	listener.Close()
	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}
	return nil
}

func acceptLoop(ctx context.Context, listener net.Listener, serve func(ipc.Conn)) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				if errors.Is(err, net.ErrClosed) {
					return
				}
				slog.Error("failed to accept connection", "error", err)
				continue
			}
		}
		slog.Info("new connection accepted")
		go serve(ipc.NewStreamConn(conn))
	}
}

