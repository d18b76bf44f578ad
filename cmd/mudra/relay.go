package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/relay"
	"github.com/ayusman/mudra/internal/transport"
)

var (
	relayAddr     string
	relayPort     string
	relayNoSerial bool
)

func newRelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Bridge gesture messages to the motor controller's serial port",
		Args:  cobra.NoArgs,
		RunE:  runRelayCmd,
	}

	cmd.Flags().StringVar(&relayAddr, "addr", "", "listen address (overrides relay.addr)")
	cmd.Flags().StringVar(&relayPort, "port", "", "serial port (overrides relay.port)")
	cmd.Flags().BoolVar(&relayNoSerial, "no-serial", false, "run without a controller attached")

	return cmd
}

func runRelayCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rc := cfg.Relay
	if cmd.Flags().Changed("addr") {
		rc.Addr = relayAddr
	}
	if cmd.Flags().Changed("port") {
		rc.Port = relayPort
	}

	gin.SetMode(gin.ReleaseMode)
	r := relay.New(relay.Options{
		StepAngle: rc.StepAngle,
		StaticDir: rc.StaticDir,
		Console:   os.Stdout,
	})
	console := r.Console()

	if !relayNoSerial {
		port, err := transport.OpenSerialPort(rc.Port, rc.Baud, rc.Settle())
		if err != nil {
			console.Error("Controller connection failed: " + err.Error())
		} else {
			defer port.Close()
			r.SetActuator(port)
			console.Info("Controller connected on " + rc.Port)
		}
	}

	httpServer := &http.Server{Addr: rc.Addr, Handler: r.Handler()}
	go func() {
		console.Info("Relay listening on " + rc.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Relay server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
