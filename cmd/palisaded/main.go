// Command palisaded runs the object store: it loads configuration, wires
// the application together, serves the HTTP surface, and shuts down
// gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/palisade-db/palisade/internal/app"
	"github.com/palisade-db/palisade/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $CONFIG_FILE, then configs/config.yaml, then built-in values)")
	addr := flag.String("addr", "", "override server_listener_ip_address:port_number, e.g. 0.0.0.0:8080")
	flag.Parse()

	if flag.NArg() > 0 && *configPath == "" {
		*configPath = flag.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("palisaded: load config: %v", err)
	}
	if *addr != "" {
		host, port, err := splitHostPort(*addr)
		if err != nil {
			log.Fatalf("palisaded: invalid -addr %q: %v", *addr, err)
		}
		cfg.Server.ServerListenerIPAddress = host
		cfg.Server.PortNumber = port
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("palisaded: build application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("palisaded: start: %v", err)
	}

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := application.Stop(shutdownCtx); err != nil {
		log.Fatalf("palisaded: shutdown: %v", err)
	}
}

func splitHostPort(addr string) (string, int, error) {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			var port int
			if _, err := fmt.Sscanf(addr[i+1:], "%d", &port); err != nil {
				return "", 0, err
			}
			return addr[:i], port, nil
		}
	}
	return "", 0, fmt.Errorf("missing ':' in address %q", addr)
}
