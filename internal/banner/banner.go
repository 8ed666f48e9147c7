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
Package banner provides the startup banner display for FlyChat.

OVERVIEW:
=========
Displays an ASCII art banner with version information when a server
starts. Uses ANSI escape codes for colors.

USAGE:
======

	banner.Print()                     // Print to stdout
	banner.PrintServerWithConfig(cfg)  // Print server banner with configuration

The banner text is embedded at compile time from banner.txt.
*/
package banner

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"flychat/internal/config"
)

//go:embed banner.txt
var bannerText string

// ANSI escape codes for terminal text formatting.
const (
	AnsiRed    = "\033[31m"
	AnsiGreen  = "\033[32m"
	AnsiYellow = "\033[33m"
	AnsiCyan   = "\033[36m"
	AnsiReset  = "\033[0m"
	AnsiBold   = "\033[1m"
	AnsiDim    = "\033[2m"
)

// Version information
const (
	Version   = "1.4.2"
	Copyright = "Copyright (c) 2026 Firefly Software Solutions Inc."
	License   = "Licensed under Apache License 2.0"
)

// GetBanner returns the raw ASCII banner text.
func GetBanner() string {
	return bannerText
}

// GetBannerLines returns the banner as individual lines.
func GetBannerLines() []string {
	return strings.Split(strings.TrimRight(bannerText, "\n"), "\n")
}

// Print displays the startup banner with version and copyright information.
func Print() {
	PrintTo(os.Stdout)
}

// PrintTo writes the banner to the specified writer.
func PrintTo(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, AnsiCyan+AnsiBold)
	for _, line := range GetBannerLines() {
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w, AnsiReset)
	fmt.Fprintln(w, AnsiGreen+AnsiBold+"  FlyChat"+AnsiReset+" "+AnsiDim+"v"+Version+AnsiReset)
	fmt.Fprintln(w, AnsiDim+"  Distributed Chat Backend"+AnsiReset)
	fmt.Fprintln(w)
	fmt.Fprintln(w, AnsiDim+"  "+Copyright+AnsiReset)
	fmt.Fprintln(w)
}

// PrintCompact prints a compact version of the banner.
func PrintCompact() {
	fmt.Println(AnsiCyan + AnsiBold + "FlyChat" + AnsiReset + " v" + Version)
}

// PrintServerWithConfig prints the server banner with a configuration overview.
func PrintServerWithConfig(role string, cfg *config.Config) {
	PrintServerWithConfigTo(os.Stdout, role, cfg)
}

// PrintServerWithConfigTo writes the server banner with configuration to w.
func PrintServerWithConfigTo(w io.Writer, role string, cfg *config.Config) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, AnsiCyan+AnsiBold)
	for _, line := range GetBannerLines() {
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w, AnsiReset)
	fmt.Fprintln(w, AnsiGreen+AnsiBold+"  FlyChat "+role+AnsiReset+" "+AnsiDim+"v"+Version+AnsiReset)
	fmt.Fprintln(w, AnsiDim+"  Distributed Chat Backend"+AnsiReset)
	fmt.Fprintln(w)

	printConfigSource(w, cfg)
	printCompactConfig(w, cfg)

	fmt.Fprintln(w, AnsiDim+"  "+Copyright+AnsiReset)
	fmt.Fprintln(w)

	printLogSeparator(w)
}

// PrintLogSeparator prints a visual separator before logs start.
func PrintLogSeparator() {
	printLogSeparator(os.Stdout)
}

func printLogSeparator(w io.Writer) {
	const lineWidth = 78
	arrow := "v"
	text := " LOGS START HERE "
	padding := (lineWidth - len(text) - 4) / 2 // 4 for arrows on each side
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat("-", padding)
	fmt.Fprintf(w, "  %s%s %s%s%s %s%s%s\n",
		AnsiYellow, arrow+arrow+line,
		AnsiBold, text, AnsiReset+AnsiYellow,
		line+arrow+arrow, AnsiReset, "")
	fmt.Fprintln(w)
}

func printConfigSource(w io.Writer, cfg *config.Config) {
	fmt.Fprint(w, "  "+AnsiDim+"Config: "+AnsiReset)
	if cfg.ConfigFile != "" {
		fmt.Fprintln(w, AnsiYellow+cfg.ConfigFile+AnsiReset)
	} else {
		fmt.Fprintln(w, AnsiDim+"defaults + environment"+AnsiReset)
	}
	fmt.Fprintln(w)
}

func printCompactConfig(w io.Writer, cfg *config.Config) {
	const lineWidth = 78

	printSectionHeader(w, "Server", lineWidth)
	fmt.Fprintf(w, "  %s  %s  %s\n",
		fmtKV("Name", cfg.ServerName),
		fmtKV("Listen", AnsiGreen+cfg.BindAddr+AnsiReset),
		fmtKV("Log", cfg.LogLevel))
	fmt.Fprintf(w, "  %s  %s\n",
		fmtKV("RPC", cfg.GRPC.BindAddr),
		fmtKV("Balance", cfg.Balance.Addr))
	fmt.Fprintln(w)

	printSectionHeader(w, "Backends", lineWidth)
	fmt.Fprintf(w, "  %s  %s\n",
		fmtKV("Redis", cfg.Redis.Addr),
		fmtKV("MySQL", redactDSN(cfg.MySQL.DSN)))
	fmt.Fprintln(w)

	printSectionHeader(w, "Features", lineWidth)
	fmt.Fprintf(w, "  %s %s %s %s\n",
		fmtEnabled("archive", cfg.Archive.Enabled),
		fmtEnabled("websocket", cfg.WS.Enabled),
		fmtEnabled("metrics", cfg.Metrics.Enabled),
		fmtEnabled("discovery", cfg.Discovery.Enabled))
	fmt.Fprintln(w)
}

func printSectionHeader(w io.Writer, title string, width int) {
	titleLen := len(title) + 4 // "[ title ]"
	leftPad := 2
	rightPad := width - leftPad - titleLen
	if rightPad < 0 {
		rightPad = 0
	}
	fmt.Fprintf(w, "  %s[ %s%s%s ]%s%s\n",
		AnsiDim+strings.Repeat("-", leftPad),
		AnsiReset+AnsiCyan+AnsiBold, title, AnsiReset+AnsiDim,
		strings.Repeat("-", rightPad),
		AnsiReset)
}

func fmtKV(key, value string) string {
	return fmt.Sprintf("%s%s:%s %s", AnsiDim, key, AnsiReset, value)
}

func fmtEnabled(name string, enabled bool) string {
	if enabled {
		return AnsiGreen + name + AnsiReset
	}
	return AnsiDim + name + AnsiReset
}

// redactDSN hides credentials in a MySQL DSN for display.
func redactDSN(dsn string) string {
	if dsn == "" {
		return AnsiDim + "not configured" + AnsiReset
	}
	if at := strings.LastIndex(dsn, "@"); at >= 0 {
		return "***@" + dsn[at+1:]
	}
	return dsn
}
