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

// Package metrics exposes Prometheus instrumentation for FlyChat.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flychat/internal/logging"
)

var (
	// Session metrics
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flychat_sessions_active",
		Help: "The current number of live client sessions.",
	})
	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flychat_sessions_total",
		Help: "The total number of client sessions accepted.",
	})
	SessionsKicked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flychat_sessions_kicked_total",
		Help: "The total number of sessions terminated by a newer login.",
	})

	// Logic engine metrics
	TasksCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flychat_logic_tasks_committed_total",
		Help: "The total number of tasks accepted by the logic queue.",
	})
	TasksDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flychat_logic_tasks_dropped_total",
		Help: "The total number of tasks dropped because the logic queue was full.",
	})

	// Routing metrics
	MessagesForwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flychat_messages_forwarded_total",
		Help: "The total number of chat messages forwarded, by delivery path.",
	}, []string{"path"}) // "local", "remote", "offline"

	// Auth metrics
	AuthSuccess = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flychat_auth_success_total",
		Help: "The total number of successful logins.",
	})
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flychat_auth_failures_total",
		Help: "The total number of failed logins.",
	}, []string{"reason"})

	// File transfer metrics
	UploadChunks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flychat_upload_chunks_total",
		Help: "The total number of file chunks applied.",
	})
	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flychat_upload_bytes_total",
		Help: "The total number of file payload bytes written.",
	})

	// Archive metrics
	ArchivePublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flychat_archive_published_total",
		Help: "The total number of message batches published to the archive.",
	})
	ArchiveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flychat_archive_failures_total",
		Help: "The total number of archive publish failures.",
	})
)

// StartServer starts the HTTP server for Prometheus metrics.
func StartServer(addr, path string) {
	logger := logging.NewLogger("metrics")

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	logger.Info("Metrics server listening", "addr", addr, "path", path)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server stopped", "error", err)
		}
	}()
}
