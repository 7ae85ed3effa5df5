//go:build !js

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gocrystal/pkg/server"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides config)")
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	cfg.Apply()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if err := server.New(cfg, log).ListenAndServe(); err != nil {
		fmt.Fprintln(os.Stderr, "server error:", err)
		os.Exit(1)
	}
}
