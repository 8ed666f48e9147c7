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

package archive

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/segmentio/kafka-go"
)

type memWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *memWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *memWriter) published() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]kafka.Message, len(w.msgs))
	copy(out, w.msgs)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func TestArchiveTextPublishesAvroRecords(t *testing.T) {
	w := &memWriter{}
	a := newWithWriter(w)
	defer a.Close()

	a.ArchiveText("u1", "u2", []string{"v-1", "v-2"}, []string{"hello", "world"})
	waitFor(t, func() bool { return len(w.published()) == 2 })

	msgs := w.published()
	if string(msgs[0].Key) != "v-1" || string(msgs[1].Key) != "v-2" {
		t.Errorf("Expected keys v-1, v-2, got %q, %q", msgs[0].Key, msgs[1].Key)
	}

	var ev TextMessage
	if err := avro.Unmarshal(a.schema, msgs[1].Value, &ev); err != nil {
		t.Fatalf("Expected valid Avro payload, got decode error: %v", err)
	}
	if ev.VerifiedID != "v-2" || ev.SrcUUID != "u1" || ev.DstUUID != "u2" || ev.Content != "world" {
		t.Errorf("Expected v-2/u1/u2/world, got %+v", ev)
	}
}

func TestArchiveToleratesShortContentSlice(t *testing.T) {
	w := &memWriter{}
	a := newWithWriter(w)
	defer a.Close()

	a.ArchiveText("u1", "u2", []string{"v-1", "v-2"}, []string{"only"})
	waitFor(t, func() bool { return len(w.published()) == 2 })

	var ev TextMessage
	if err := avro.Unmarshal(a.schema, w.published()[1].Value, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Content != "" {
		t.Errorf("Expected empty content for missing entry, got %q", ev.Content)
	}
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	w := &memWriter{err: errors.New("broker down")}
	a := newWithWriter(w)

	a.ArchiveText("u1", "u2", []string{"v-1"}, []string{"x"})
	// Close drains the queue; the failed publish must not block it.
	if err := a.Close(); err != nil {
		t.Fatalf("Expected clean close, got %v", err)
	}
	if !w.closed {
		t.Error("Expected writer closed")
	}
}
