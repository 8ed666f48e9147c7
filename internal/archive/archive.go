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
Package archive publishes chat events to Kafka for offline analytics.

DELIVERY MODEL

Publishing is best effort and strictly off the hot path. MySQL is the
source of truth for message history; the archive stream only feeds
downstream consumers. A Kafka outage must never fail or delay a chat
operation, so writes happen on a background goroutine with a bounded
queue and drops are counted, not retried.

ENCODING

Events are Avro-encoded with a fixed schema. The verified message id
doubles as the Kafka key so compacted topics keep the latest record
per message.
*/
package archive

import (
	"context"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/segmentio/kafka-go"

	"flychat/internal/logging"
	"flychat/internal/metrics"
)

const eventSchemaJSON = `{
	"type": "record",
	"name": "TextMessage",
	"namespace": "flychat.archive",
	"fields": [
		{"name": "verified_id", "type": "string"},
		{"name": "src_uuid", "type": "string"},
		{"name": "dst_uuid", "type": "string"},
		{"name": "content", "type": "string"},
		{"name": "archived_at_ms", "type": "long"}
	]
}`

// TextMessage is the Avro record published per chat message.
type TextMessage struct {
	VerifiedID   string `avro:"verified_id"`
	SrcUUID      string `avro:"src_uuid"`
	DstUUID      string `avro:"dst_uuid"`
	Content      string `avro:"content"`
	ArchivedAtMs int64  `avro:"archived_at_ms"`
}

const (
	queueSize    = 4096
	writeTimeout = 5 * time.Second
)

// writerAPI is the slice of kafka.Writer the archiver uses.
type writerAPI interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Archiver implements logic.Archiver on top of a Kafka writer.
type Archiver struct {
	writer writerAPI
	schema avro.Schema
	queue  chan TextMessage
	logger *logging.Logger
	done   chan struct{}
}

// New creates an archiver publishing to topic via brokers and starts
// its publisher goroutine.
func New(brokers []string, topic string) *Archiver {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return newWithWriter(w)
}

func newWithWriter(w writerAPI) *Archiver {
	a := &Archiver{
		writer: w,
		schema: avro.MustParse(eventSchemaJSON),
		queue:  make(chan TextMessage, queueSize),
		logger: logging.NewLogger("archive"),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

// ArchiveText enqueues one event per message. A full queue drops the
// whole batch.
func (a *Archiver) ArchiveText(src, dst string, verified []string, contents []string) {
	now := time.Now().UnixMilli()
	for i, id := range verified {
		content := ""
		if i < len(contents) {
			content = contents[i]
		}
		ev := TextMessage{
			VerifiedID:   id,
			SrcUUID:      src,
			DstUUID:      dst,
			Content:      content,
			ArchivedAtMs: now,
		}
		select {
		case a.queue <- ev:
		default:
			metrics.ArchiveFailures.Inc()
			a.logger.Warn("Archive queue full, dropping event", "verified_id", id)
		}
	}
}

func (a *Archiver) run() {
	defer close(a.done)
	for ev := range a.queue {
		a.publish(ev)
	}
}

func (a *Archiver) publish(ev TextMessage) {
	raw, err := avro.Marshal(a.schema, ev)
	if err != nil {
		metrics.ArchiveFailures.Inc()
		a.logger.Error("Avro encode failed", "verified_id", ev.VerifiedID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	err = a.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.VerifiedID),
		Value: raw,
	})
	if err != nil {
		metrics.ArchiveFailures.Inc()
		a.logger.Warn("Kafka publish failed", "verified_id", ev.VerifiedID, "error", err)
		return
	}
	metrics.ArchivePublished.Inc()
}

// Close drains the queue, stops the publisher and closes the writer.
func (a *Archiver) Close() error {
	close(a.queue)
	<-a.done
	return a.writer.Close()
}
