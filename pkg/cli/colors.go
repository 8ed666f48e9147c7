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
Package cli provides shared CLI utilities for FlyChat applications.

COLORS:
=======
ANSI escape codes for terminal text formatting:
- Reset, Bold, Dim
- Foreground: Red, Green, Yellow, Cyan

ICONS:
======
Unicode icons for CLI output:
- IconSuccess (✓), IconError (✗), IconWarning (⚠)
- IconInfo (ℹ), IconArrow (→)

USAGE:
======

	fmt.Printf("%s%sSuccess!%s\n", cli.Green, cli.Bold, cli.Reset)
	fmt.Printf("%s Operation completed\n", cli.IconSuccess)

Colors are automatically disabled when output is not a TTY.
*/
package cli

import (
	"fmt"
	"os"
)

// ANSI color codes for terminal output.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

// Icons for CLI output
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconArrow   = "→"
)

var colorsEnabled = true

func init() {
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
	}
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		colorsEnabled = false
	}
}

// SetColorsEnabled enables or disables color output.
func SetColorsEnabled(enabled bool) {
	colorsEnabled = enabled
}

func colorize(color, text string) string {
	if !colorsEnabled {
		return text
	}
	return color + text + Reset
}

// Success prints a success message.
func Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(colorize(Green, IconSuccess+" "+msg))
}

// Error prints an error message.
func Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(Red, IconError+" "+msg))
}

// Warning prints a warning message.
func Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(colorize(Yellow, IconWarning+" "+msg))
}

// Info prints an info message.
func Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(colorize(Cyan, IconInfo+" "+msg))
}

// Hint prints a hint message (dimmed).
func Hint(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(colorize(Dim, "  "+IconArrow+" "+msg))
}

// Header prints a header/title.
func Header(text string) {
	fmt.Println(colorize(Bold+Cyan, text))
}

// KeyValue prints a key-value pair.
func KeyValue(key string, value interface{}) {
	fmt.Printf("  %s: %v\n", colorize(Dim, key), value)
}

// Separator prints a horizontal line.
func Separator() {
	fmt.Println(colorize(Dim, "────────────────────────────────────────"))
}
