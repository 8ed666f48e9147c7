/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
FlyChat Resources Server - Main Entry Point.

USAGE:
======

	flychat-resources [options]

The resources server handles chunked file uploads over the framed TCP
protocol with the larger chunk body ceiling. Uploads are sharded to a
fixed worker pool and survive restarts through a memory-mapped resume
ledger next to each in-progress file.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flychat/internal/banner"
	"flychat/internal/config"
	"flychat/internal/logging"
	"flychat/internal/metrics"
	"flychat/internal/server"
	"flychat/internal/transfer"
)

func printHelp() {
	banner.Print()
	fmt.Println()
	fmt.Println("\033[1;36mUsage:\033[0m")
	fmt.Println("  flychat-resources [options]")
	fmt.Println()
	fmt.Println("\033[1;36mOptions:\033[0m")
	fmt.Println("  -config string    Path to configuration file (JSON format)")
	fmt.Println("  -human-readable   Use human-readable log format instead of JSON")
	fmt.Println("  -quiet            Skip banner and config display, output logs only")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -help, -h         Show this help message")
	fmt.Println()
	fmt.Println("\033[1;36mEnvironment Variables:\033[0m")
	fmt.Println("  FLYCHAT_RESOURCES_BIND_ADDR   Bind address (default: :8093)")
	fmt.Println("  FLYCHAT_RESOURCES_DATA_DIR    Upload data directory")
	fmt.Println("  FLYCHAT_RESOURCES_WORKERS     Worker pool size (default: CPU count)")
	fmt.Println()
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-h" || arg == "--help" || arg == "-help" || arg == "help" {
			printHelp()
			return
		}
	}

	configPath := flag.String("config", "", "Path to configuration file")
	humanReadable := flag.Bool("human-readable", false, "Use human-readable log format instead of JSON")
	quietMode := flag.Bool("quiet", false, "Skip banner and config display, output logs only")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		banner.Print()
		return
	}

	cfgMgr := config.Global()
	if *configPath != "" {
		if err := cfgMgr.LoadFromFile(*configPath); err != nil {
			fmt.Printf("Error loading config file: %v\n", err)
			os.Exit(1)
		}
	}
	cfgMgr.LoadFromEnv()
	cfg := cfgMgr.Get()
	cfg.Finalize()

	if *humanReadable {
		cfg.LogJSON = false
	}
	if !*quietMode {
		banner.PrintServerWithConfig("Resources Server", cfg)
	}

	logging.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))
	logging.SetJSONMode(cfg.LogJSON)
	logger := logging.NewLogger("main")

	logger.Info("Starting FlyChat resources server",
		"version", banner.Version,
		"addr", cfg.Resources.BindAddr,
		"data_dir", cfg.Resources.DataDir,
		"workers", cfg.Resources.Workers)

	pool, err := transfer.NewPool(cfg.Resources.DataDir, cfg.Resources.Workers)
	if err != nil {
		logger.Error("Failed to create worker pool", "error", err)
		os.Exit(1)
	}

	idle := time.Duration(cfg.Session.IdleTimeoutSec+cfg.Session.HeartbeatGraceSec) * time.Second
	front := server.NewResources(cfg.Resources.BindAddr, idle, pool)
	if err := front.Start(); err != nil {
		logger.Error("Failed to start resources front end", "error", err)
		os.Exit(1)
	}

	if cfg.Metrics.Enabled {
		metrics.StartServer(cfg.Metrics.Addr, "/metrics")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down...")
	front.Stop()
	pool.Close()
}
