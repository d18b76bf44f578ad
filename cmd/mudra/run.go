package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/transmit"
	"github.com/ayusman/mudra/internal/transport"
	"github.com/ayusman/mudra/internal/tray"
)

var (
	runAddr      string
	runTransport string
	runURL       string
	runDriver    string
	runPolicy    string
	runMock      bool
	runTray      bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture hands from the camera and drive the motors",
		Args:  cobra.NoArgs,
		RunE:  runPipelineCmd,
	}

	cmd.Flags().StringVar(&runAddr, "addr", "", "dashboard listen address (overrides server.addr)")
	cmd.Flags().StringVar(&runTransport, "transport", "", "websocket, http, serial, exec or none (overrides transport.kind)")
	cmd.Flags().StringVar(&runURL, "url", "", "controller URL (overrides transport.url)")
	cmd.Flags().StringVar(&runDriver, "driver", "", "driver name for the exec transport (overrides transport.driver)")
	cmd.Flags().StringVar(&runPolicy, "policy", "", "change or time (overrides transmit.policy)")
	cmd.Flags().BoolVar(&runMock, "mock", false, "use the mock hand detector")
	cmd.Flags().BoolVar(&runTray, "tray", false, "show the system tray menu")

	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = runAddr
	}
	if flags.Changed("transport") {
		cfg.Transport.Kind = runTransport
	}
	if flags.Changed("url") {
		cfg.Transport.URL = runURL
	}
	if flags.Changed("driver") {
		cfg.Transport.Driver = runDriver
	}
	if flags.Changed("policy") {
		cfg.Transmit.Policy = runPolicy
	}
	if flags.Changed("mock") {
		cfg.Detector.Mock = runMock
	}
	if flags.Changed("tray") {
		cfg.Server.Tray = runTray
	}
	return cfg.Validate()
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, &cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	tr, err := transport.New(cfg.Transport, nil)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}
	defer tr.Close()

	policy, err := transmit.NewPolicy(cfg.Transmit.Policy, cfg.Transmit.Interval())
	if err != nil {
		return err
	}
	tx := transmit.New(transmit.Options{
		Policy:    policy,
		Transport: tr,
		Recorder:  app.NewHistoryRecorder(st, cfg.Transport.Kind),
		Timeout:   cfg.Transmit.Timeout(),
		QueueSize: cfg.Transmit.QueueSize,
	})
	defer tx.Close()

	det, err := newDetector(cfg.Detector)
	if err != nil {
		return err
	}

	a := app.New(app.Config{
		Store: st,
		Camera: capture.NewCameraWithOptions(capture.Options{
			DeviceID: cfg.Camera.Device,
			Width:    cfg.Camera.Width,
			Height:   cfg.Camera.Height,
			FPS:      cfg.Camera.FPS,
		}),
		Detector:    det,
		Transmitter: tx,
		FPS:         cfg.Camera.FPS,
		Preview:     cfg.Server.Preview,
	})

	if err := a.Start(); err != nil {
		det.Close()
		return err
	}
	defer a.Stop()
	log.Printf("Sending commands via %s (%s policy)", cfg.Transport.Kind, policy.Name())

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		log.Printf("Serving static files from: %s", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Pipeline:  a,
	})
	defer srv.Close()

	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: srv}
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Tray {
		runTrayUntil(ctx, stop, a, dashboardURL(cfg.Server.Addr))
	} else {
		<-ctx.Done()
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newDetector builds the configured hand detector. Only an explicit mock
// setting selects the mock; a broken MediaPipe setup is an error.
func newDetector(cfg config.DetectorConfig) (detector.Detector, error) {
	if cfg.Mock {
		log.Println("Using mock hand detection")
		return detector.NewMockDetector(), nil
	}
	mp, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.MinConfidence,
		MinTrackingConf: cfg.MinTrackingConf,
		Script:          cfg.Script,
		Python:          cfg.Python,
	})
	if err != nil {
		return nil, fmt.Errorf("mediapipe detector: %w (use --mock to run without it)", err)
	}
	log.Println("Using MediaPipe hand detection")
	return mp, nil
}

// runTrayUntil blocks in the tray loop until ctx is done or Quit is chosen.
func runTrayUntil(ctx context.Context, cancel func(), a *app.App, url string) {
	t := tray.New(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnSettings(func() { openBrowser(url) })
	t.OnQuit(cancel)

	unsubscribe := a.Subscribe(func(ev app.Event) { t.SetStatus(ev.Classification) })
	defer unsubscribe()

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(config.DataDir(), "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
