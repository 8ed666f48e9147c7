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

package cli

import (
	"strings"
	"testing"
)

func TestColorizeDisabled(t *testing.T) {
	defer SetColorsEnabled(colorsEnabled)

	SetColorsEnabled(false)
	if got := colorize(Red, "text"); got != "text" {
		t.Errorf("Expected plain text with colors disabled, got %q", got)
	}
}

func TestColorizeEnabled(t *testing.T) {
	defer SetColorsEnabled(colorsEnabled)

	SetColorsEnabled(true)
	got := colorize(Green, "ok")
	if !strings.HasPrefix(got, Green) || !strings.HasSuffix(got, Reset) {
		t.Errorf("Expected wrapped color codes, got %q", got)
	}
}

func TestIconsNonEmpty(t *testing.T) {
	for name, icon := range map[string]string{
		"success": IconSuccess,
		"error":   IconError,
		"warning": IconWarning,
		"info":    IconInfo,
		"arrow":   IconArrow,
	} {
		if icon == "" {
			t.Errorf("Expected non-empty icon for %s", name)
		}
	}
}
