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
FlyChat Balance Server - Main Entry Point.

USAGE:
======

	flychat-balance [options]

The balance server is the cluster's registry: chatting servers announce
their client and gRPC endpoints here, and clients ask it which chatting
server to connect to. Server load comes from the shared Redis count
hash, so the pick reflects live connection counts.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"flychat/internal/balance"
	"flychat/internal/banner"
	"flychat/internal/config"
	"flychat/internal/discovery"
	"flychat/internal/logging"
	"flychat/internal/metrics"
	"flychat/internal/presence"
)

func printHelp() {
	banner.Print()
	fmt.Println()
	fmt.Println("\033[1;36mUsage:\033[0m")
	fmt.Println("  flychat-balance [options]")
	fmt.Println()
	fmt.Println("\033[1;36mOptions:\033[0m")
	fmt.Println("  -config string    Path to configuration file (JSON format)")
	fmt.Println("  -human-readable   Use human-readable log format instead of JSON")
	fmt.Println("  -quiet            Skip banner and config display, output logs only")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -help, -h         Show this help message")
	fmt.Println()
	fmt.Println("\033[1;36mEnvironment Variables:\033[0m")
	fmt.Println("  FLYCHAT_BALANCE_ADDR       Bind address (default: 127.0.0.1:9000)")
	fmt.Println("  FLYCHAT_REDIS_ADDR         Redis address")
	fmt.Println("  FLYCHAT_REDIS_PASSWORD     Redis password")
	fmt.Println("  FLYCHAT_DISCOVERY_ENABLED  Advertise over mDNS (true/false)")
	fmt.Println("  FLYCHAT_CLUSTER_ID         Cluster identifier for discovery")
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
		banner.PrintServerWithConfig("Balance Server", cfg)
	}

	logging.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))
	logging.SetJSONMode(cfg.LogJSON)
	logger := logging.NewLogger("main")

	logger.Info("Starting FlyChat balance server",
		"version", banner.Version, "addr", cfg.Balance.Addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The count hash lives in Redis next to the presence data.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	counts := presence.NewStore(rdb, "balance", logger)
	go counts.HealthCheckLoop(ctx, 15*time.Second)

	grpcSrv, err := balance.NewServer(counts).Serve(cfg.Balance.Addr)
	if err != nil {
		logger.Error("Failed to start balance server", "error", err)
		os.Exit(1)
	}
	defer grpcSrv.GracefulStop()

	if cfg.Metrics.Enabled {
		metrics.StartServer(cfg.Metrics.Addr, "/metrics")
	}

	// Announce over mDNS so servers can find the cluster.
	if cfg.Discovery.Enabled {
		port, err := portOf(cfg.Balance.Addr)
		if err != nil {
			logger.Error("Cannot advertise balance endpoint", "error", err)
			os.Exit(1)
		}
		adv, err := discovery.Advertise(cfg.Discovery.ClusterID, "balance", port)
		if err != nil {
			logger.Warn("mDNS advertisement failed", "error", err)
		} else {
			defer adv.Close()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down...")
}

func portOf(addr string) (int, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(port)
}
