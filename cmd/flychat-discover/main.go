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
flychat-discover - FlyChat Cluster Discovery Tool

Discovers FlyChat balance servers on the local network using mDNS
(Bonjour/Avahi). Useful for pointing a new chatting server at an
existing cluster without static configuration.

Usage:
    flychat-discover --cluster prod       # Discover cluster "prod"
    flychat-discover --cluster prod --json
    flychat-discover --cluster prod --quiet
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"flychat/internal/banner"
	"flychat/internal/discovery"
	"flychat/pkg/cli"
)

func main() {
	clusterID := flag.String("cluster", "default", "Cluster identifier to search for")
	role := flag.String("role", "balance", "Endpoint role to filter on (empty for all)")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	quiet := flag.Bool("quiet", false, "Only output addresses (for scripting)")
	help := flag.Bool("help", false, "Show help")
	version := flag.Bool("version", false, "Show version information")
	flag.BoolVar(help, "h", false, "Show help")
	flag.BoolVar(version, "v", false, "Show version information")
	flag.BoolVar(quiet, "q", false, "Only output addresses (for scripting)")

	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}
	if *version {
		printVersion()
		os.Exit(0)
	}

	// Suppress mDNS library logging (it logs IPv6 errors that are not critical)
	log.SetOutput(io.Discard)

	if !*quiet && !*jsonOutput {
		printBanner()
		cli.Info("Scanning for FlyChat %q endpoints in cluster %q...", *role, *clusterID)
		fmt.Println()
	}

	eps, err := discovery.Lookup(*clusterID, *role)
	if err != nil {
		if !*quiet {
			cli.Error("Discovery failed: %v", err)
		}
		os.Exit(1)
	}

	if len(eps) == 0 {
		if !*quiet && !*jsonOutput {
			cli.Warning("No FlyChat endpoints found on the network.")
			fmt.Println()
			fmt.Println(cli.Dim + "  Common issues:" + cli.Reset)
			fmt.Println("    " + cli.Yellow + "•" + cli.Reset + " The balance server is not running with discovery enabled")
			fmt.Println("    " + cli.Yellow + "•" + cli.Reset + " mDNS/Bonjour is blocked by firewall (UDP port 5353)")
			fmt.Println("    " + cli.Yellow + "•" + cli.Reset + " The cluster id does not match (see FLYCHAT_CLUSTER_ID)")
			fmt.Println()
		}
		os.Exit(0)
	}

	switch {
	case *jsonOutput:
		outputJSON(eps)
	case *quiet:
		outputQuiet(eps)
	default:
		outputHuman(eps)
	}
}

func printBanner() {
	fmt.Println()
	fmt.Println(cli.Cyan + cli.Bold)
	for _, line := range banner.GetBannerLines() {
		fmt.Println("  " + line)
	}
	fmt.Println(cli.Reset)
	fmt.Println(cli.Green + cli.Bold + "  FlyChat Discover" + cli.Reset + " " + cli.Dim + "v" + banner.Version + cli.Reset)
	fmt.Println(cli.Dim + "  Cluster Discovery Tool" + cli.Reset)
	fmt.Println()
}

func printVersion() {
	fmt.Println()
	fmt.Println(cli.Cyan + cli.Bold + "  FlyChat Discover" + cli.Reset + " " + cli.Dim + "v" + banner.Version + cli.Reset)
	fmt.Println(cli.Dim + "  " + banner.Copyright + cli.Reset)
	fmt.Println()
}

func printUsage() {
	printBanner()
	fmt.Println(cli.Dim + "  Discovers FlyChat balance servers using mDNS (Bonjour/Avahi)." + cli.Reset)
	fmt.Println()
	fmt.Println(cli.Bold + "Usage:" + cli.Reset + " flychat-discover [options]")
	fmt.Println()
	fmt.Println(cli.Bold + cli.Cyan + "OPTIONS" + cli.Reset)
	fmt.Println()
	fmt.Println("    " + cli.Green + "--cluster" + cli.Reset + " <id>     Cluster identifier (default: default)")
	fmt.Println("    " + cli.Green + "--role" + cli.Reset + " <role>     Endpoint role filter (default: balance)")
	fmt.Println("    " + cli.Green + "--json" + cli.Reset + "             Output results as JSON")
	fmt.Println("    " + cli.Green + "--quiet" + cli.Reset + ", " + cli.Green + "-q" + cli.Reset + "        Only output addresses (for scripting)")
	fmt.Println("    " + cli.Green + "--version" + cli.Reset + ", " + cli.Green + "-v" + cli.Reset + "      Show version information")
	fmt.Println("    " + cli.Green + "--help" + cli.Reset + ", " + cli.Green + "-h" + cli.Reset + "         Show this help message")
	fmt.Println()
	fmt.Println(cli.Bold + cli.Cyan + "EXAMPLES" + cli.Reset)
	fmt.Println()
	fmt.Println(cli.Dim + "    # Find the balance server for cluster prod" + cli.Reset)
	fmt.Println("    flychat-discover --cluster prod")
	fmt.Println()
	fmt.Println(cli.Dim + "    # Use in a startup script" + cli.Reset)
	fmt.Println("    FLYCHAT_BALANCE_ADDR=$(flychat-discover --cluster prod --quiet | head -1)")
	fmt.Println()
}

func outputJSON(eps []discovery.Endpoint) {
	type epOutput struct {
		Host string `json:"host"`
		Port int    `json:"port"`
		Role string `json:"role,omitempty"`
	}
	out := make([]epOutput, len(eps))
	for i, e := range eps {
		out[i] = epOutput{Host: e.Host, Port: e.Port, Role: e.Role}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}

func outputQuiet(eps []discovery.Endpoint) {
	for _, e := range eps {
		fmt.Printf("%s:%d\n", e.Host, e.Port)
	}
}

func outputHuman(eps []discovery.Endpoint) {
	cli.Success("Found %d endpoint(s):", len(eps))
	fmt.Println()
	for _, e := range eps {
		cli.KeyValue(e.Role, fmt.Sprintf("%s:%d", e.Host, e.Port))
	}
	fmt.Println()
}
