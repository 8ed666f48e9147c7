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
FlyChat Chatting Server - Main Entry Point.

USAGE:
======

	flychat [options]

OPTIONS:
========

	-config string    Path to configuration file (JSON format)
	-version          Show version information
	-help             Show help message

STARTUP SEQUENCE:
=================
1. Parse command line flags and config file
2. Initialize logging
3. Connect backends (Redis presence, MySQL store)
4. Start logic engine and peer gRPC service
5. Register with the balance server
6. Start the client TCP front end (and WebSocket gateway)
7. Wait for shutdown signal
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	chatv1 "flychat/api/proto/chat/v1"
	"flychat/internal/archive"
	"flychat/internal/banner"
	"flychat/internal/bridge"
	"flychat/internal/cache"
	"flychat/internal/config"
	"flychat/internal/discovery"
	"flychat/internal/logging"
	"flychat/internal/logic"
	"flychat/internal/metrics"
	"flychat/internal/presence"
	"flychat/internal/rpc"
	"flychat/internal/server"
	"flychat/internal/server/ws"
	"flychat/internal/session"
	"flychat/internal/store"
)

const backendHealthInterval = 15 * time.Second

func printHelp() {
	banner.Print()
	fmt.Println()
	fmt.Println("\033[1;36mUsage:\033[0m")
	fmt.Println("  flychat [options]")
	fmt.Println()
	fmt.Println("\033[1;36mOptions:\033[0m")
	fmt.Println("  -config string    Path to configuration file (JSON format)")
	fmt.Println("  -human-readable   Use human-readable log format instead of JSON")
	fmt.Println("  -quiet            Skip banner and config display, output logs only")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -help, -h         Show this help message")
	fmt.Println()
	fmt.Println("\033[1;36mEnvironment Variables:\033[0m")
	fmt.Println("  FLYCHAT_SERVER_NAME        Unique chatting-server name")
	fmt.Println("  FLYCHAT_BIND_ADDR          Client TCP bind address (default: :8090)")
	fmt.Println("  FLYCHAT_GRPC_BIND_ADDR     Peer gRPC bind address (default: :8091)")
	fmt.Println("  FLYCHAT_BALANCE_ADDR       Balance server gRPC address")
	fmt.Println("  FLYCHAT_REDIS_ADDR         Redis address")
	fmt.Println("  FLYCHAT_REDIS_PASSWORD     Redis password")
	fmt.Println("  FLYCHAT_MYSQL_DSN          MySQL data source name")
	fmt.Println("  FLYCHAT_AUTH_JWT_SECRET    Token signing secret")
	fmt.Println("  FLYCHAT_LOG_LEVEL          Log level: debug, info, warn, error")
	fmt.Println("  FLYCHAT_LOG_JSON           Enable JSON log output (default: true)")
	fmt.Println()
	fmt.Println("\033[1;36mExamples:\033[0m")
	fmt.Println("  # Start with default settings")
	fmt.Println("  FLYCHAT_SERVER_NAME=chat-a flychat")
	fmt.Println()
	fmt.Println("  # Start with custom config file")
	fmt.Println("  flychat -config /etc/flychat/flychat.json")
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
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if !*quietMode {
		banner.PrintServerWithConfig("Chatting Server", cfg)
	}

	logging.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))
	logging.SetJSONMode(cfg.LogJSON)
	logger := logging.NewLogger("main")

	logger.Info("Starting FlyChat chatting server",
		"version", banner.Version, "server_name", cfg.ServerName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Balance address may come from mDNS when not configured.
	balanceAddr := cfg.Balance.Addr
	if balanceAddr == "" && cfg.Discovery.Enabled {
		eps, err := discovery.Lookup(cfg.Discovery.ClusterID, "balance")
		if err != nil || len(eps) == 0 {
			logger.Error("Balance server discovery failed", "error", err)
			os.Exit(1)
		}
		balanceAddr = fmt.Sprintf("%s:%d", eps[0].Host, eps[0].Port)
		logger.Info("Discovered balance server", "addr", balanceAddr)
	}

	// Redis presence store.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	dir := presence.NewStore(rdb, cfg.ServerName, logger)
	if err := dir.RegisterServer(ctx); err != nil {
		logger.Error("Failed to register with presence store", "error", err)
		os.Exit(1)
	}
	go dir.HealthCheckLoop(ctx, backendHealthInterval)

	// MySQL store.
	repo, err := store.Open(cfg.MySQL.DSN, cfg.MySQL.MaxOpenConns, cfg.MySQL.MaxIdleConns)
	if err != nil {
		logger.Error("Failed to open MySQL", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	if err := repo.InitSchema(ctx); err != nil {
		logger.Error("Failed to initialize schema", "error", err)
		os.Exit(1)
	}
	go repo.HealthCheckLoop(ctx, backendHealthInterval)

	// Balance server client and peer bridge.
	balConn, err := grpc.NewClient(balanceAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Error("Failed to create balance client", "error", err)
		os.Exit(1)
	}
	defer balConn.Close()
	balance := chatv1.NewRegisterServiceClient(balConn)

	peers := bridge.NewManager(cfg.ServerName, balance)
	defer peers.Close()

	// Logic engine.
	registry := session.NewRegistry(logger)
	opts := logic.Options{
		Registry: registry,
		Dir:      dir,
		Repo:     repo,
		Peers:    peers,
		Tokens:   logic.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLSec)*time.Second),
		Cache:    cache.New(rdb),
	}
	if cfg.Archive.Enabled {
		arch := archive.New(cfg.Archive.Brokers, cfg.Archive.Topic)
		defer arch.Close()
		opts.Archive = arch
		logger.Info("Archive stream enabled", "topic", cfg.Archive.Topic)
	}
	engine := logic.NewEngine(opts)
	engine.Start(ctx)
	defer engine.Stop()

	// Peer-facing gRPC service.
	grpcSrv, err := rpc.NewChattingServer(engine).Serve(cfg.GRPC.BindAddr)
	if err != nil {
		logger.Error("Failed to start peer gRPC service", "error", err)
		os.Exit(1)
	}
	defer grpcSrv.GracefulStop()

	// Client front ends.
	idle := time.Duration(cfg.Session.IdleTimeoutSec+cfg.Session.HeartbeatGraceSec) * time.Second
	front := server.New(cfg.BindAddr, idle, registry, engine, dir)

	var gateway *ws.Gateway
	var g errgroup.Group
	g.Go(front.Start)
	if cfg.WS.Enabled {
		gateway = ws.NewGateway(front, nil)
		g.Go(func() error { return gateway.Start(cfg.WS.BindAddr) })
	}
	if err := g.Wait(); err != nil {
		logger.Error("Failed to start front ends", "error", err)
		os.Exit(1)
	}

	if cfg.Metrics.Enabled {
		metrics.StartServer(cfg.Metrics.Addr, "/metrics")
	}

	// Announce both endpoints to the balance server.
	if err := registerWithBalance(ctx, balance, cfg); err != nil {
		logger.Error("Failed to register with balance server", "error", err)
		os.Exit(1)
	}
	logger.Info("Registered with balance server", "addr", balanceAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down...")

	// Deregister first so the balance server stops routing logins here.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if _, err := balance.Shutdown(shutdownCtx, &chatv1.ShutdownRequest{CurServer: cfg.ServerName}); err != nil {
		logger.Warn("Balance deregistration failed", "error", err)
	}
	shutdownCancel()

	if gateway != nil {
		gateway.Stop()
	}
	front.Stop()
	if err := dir.UnregisterServer(context.Background()); err != nil {
		logger.Warn("Presence unregister failed", "error", err)
	}
	cancel()
}

// registerWithBalance announces the client and gRPC advertise addresses.
func registerWithBalance(ctx context.Context, balance chatv1.RegisterServiceClient, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clientInfo, err := peerInfo(cfg.ServerName, cfg.GetAdvertiseAddr())
	if err != nil {
		return err
	}
	if resp, err := balance.RegisterInstance(ctx, &chatv1.RegisterRequest{Info: clientInfo}); err != nil {
		return err
	} else if resp.GetError() != 0 {
		return fmt.Errorf("instance registration refused: code %d", resp.GetError())
	}

	grpcInfo, err := peerInfo(cfg.ServerName, cfg.GetGRPCAdvertiseAddr())
	if err != nil {
		return err
	}
	if resp, err := balance.RegisterGrpc(ctx, &chatv1.RegisterRequest{Info: grpcInfo}); err != nil {
		return err
	} else if resp.GetError() != 0 {
		return fmt.Errorf("grpc registration refused: code %d", resp.GetError())
	}
	return nil
}

func peerInfo(name, addr string) (*chatv1.PeerInfo, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("bad advertise address %q: %w", addr, err)
	}
	return &chatv1.PeerInfo{Name: name, Host: host, Port: port}, nil
}
