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

package banner

import (
	"bytes"
	"strings"
	"testing"

	"flychat/internal/config"
)

func TestGetBanner(t *testing.T) {
	banner := GetBanner()
	if banner == "" {
		t.Error("Expected non-empty banner")
	}
}

func TestGetBannerLines(t *testing.T) {
	lines := GetBannerLines()
	if len(lines) == 0 {
		t.Error("Expected at least one line in banner")
	}
}

func TestPrintTo(t *testing.T) {
	var buf bytes.Buffer
	PrintTo(&buf)

	output := buf.String()
	if output == "" {
		t.Error("Expected non-empty output")
	}

	// Check for version
	if !strings.Contains(output, Version) {
		t.Errorf("Expected output to contain version %s", Version)
	}

	// Check for copyright
	if !strings.Contains(output, "Copyright") {
		t.Error("Expected output to contain copyright")
	}
}

func TestPrintServerWithConfigTo(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ServerName = "chat-a"
	cfg.MySQL.DSN = "user:secret@tcp(127.0.0.1:3306)/flychat"

	var buf bytes.Buffer
	PrintServerWithConfigTo(&buf, "Chatting Server", cfg)

	output := buf.String()
	if !strings.Contains(output, "chat-a") {
		t.Error("Expected output to contain server name")
	}
	if !strings.Contains(output, "Chatting Server") {
		t.Error("Expected output to contain role")
	}
	if strings.Contains(output, "secret") {
		t.Error("Expected MySQL credentials redacted from banner")
	}
}

func TestRedactDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"user:pw@tcp(db:3306)/chat", "***@tcp(db:3306)/chat"},
		{"tcp(db:3306)/chat", "tcp(db:3306)/chat"},
	}
	for _, tt := range tests {
		if got := redactDSN(tt.dsn); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestVersionConstant(t *testing.T) {
	if Version == "" {
		t.Error("Expected non-empty version")
	}
}

func TestCopyrightConstant(t *testing.T) {
	if Copyright == "" {
		t.Error("Expected non-empty copyright")
	}
	if !strings.Contains(Copyright, "Firefly") {
		t.Error("Expected copyright to contain 'Firefly'")
	}
}
