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
Package transfer reassembles chunked file uploads on the resources
server.

SHARDING

Every chunk is routed by an FNV-1a hash of session id and filename to
one of a fixed set of workers, each draining its own serial queue. All
chunks of one upload therefore land on the same worker in arrival
order, which is what makes strict sequence checking possible without
any per-file locking. The hash input must stay stable for the life of
an upload.

ORDERING AND RESUME

A worker applies chunks strictly in sequence-number order: the expected
sequence is tracked in a memory-mapped ledger that also records the
acknowledged byte offset, synced before each ack. An out-of-order
chunk is refused with the expected watermark in the ack so the client
can rewind. After a restart the worker reopens the data file, reconciles
its size against the ledger and seeks to the acknowledged offset instead
of truncating. The client-declared cur_size is never trusted.
*/
package transfer

import (
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"flychat/internal/logging"
	"flychat/internal/metrics"
	"flychat/internal/protocol"
)

const workerQueueSize = 256

// AckFunc delivers the acknowledgement for one applied chunk back to
// the uploading session.
type AckFunc func(protocol.UploadChunkAck)

type job struct {
	req protocol.UploadChunkRequest
	ack AckFunc
}

// upload is one in-progress reassembly owned by a single worker.
type upload struct {
	file   *os.File
	ledger *ledger
}

// Pool is the sharded worker pool for chunk reassembly.
type Pool struct {
	dataDir string
	queues  []chan job
	logger  *logging.Logger
	wg      sync.WaitGroup

	closeOnce sync.Once
}

// NewPool starts workers serial queues rooted at dataDir.
func NewPool(dataDir string, workers int) (*Pool, error) {
	if workers <= 0 {
		workers = 1
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	p := &Pool{
		dataDir: dataDir,
		queues:  make([]chan job, workers),
		logger:  logging.NewLogger("transfer"),
	}
	for i := range p.queues {
		p.queues[i] = make(chan job, workerQueueSize)
		p.wg.Add(1)
		go p.runWorker(i, p.queues[i])
	}
	return p, nil
}

// Submit routes one chunk to its upload's worker. A full worker queue
// refuses the chunk immediately rather than stalling the read loop.
// Routing uses the sanitized filename so every raw spelling of one name
// lands on the same worker and the same upload.
func (p *Pool) Submit(req protocol.UploadChunkRequest, ack AckFunc) {
	name := sanitizeFilename(req.Filename)
	if name == "" {
		ack(protocol.UploadChunkAck{
			Error:    protocol.CodeFileIO,
			Filename: req.Filename,
			SeqNo:    req.SeqNo,
		})
		return
	}

	shard := shardOf(req.SessionID, name, len(p.queues))
	select {
	case p.queues[shard] <- job{req: req, ack: ack}:
	default:
		p.logger.Warn("Worker queue full, refusing chunk",
			"shard", shard, "filename", req.Filename, "seq", req.SeqNo)
		ack(protocol.UploadChunkAck{
			Error:    protocol.CodeFileIO,
			Filename: req.Filename,
			SeqNo:    req.SeqNo,
		})
	}
}

// Close stops accepting work and waits for queued chunks to drain.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		for _, q := range p.queues {
			close(q)
		}
	})
	p.wg.Wait()
}

// shardOf must be stable across restarts; resumed uploads have to land
// on a worker with the same serial-queue guarantee.
func shardOf(sessionID, filename string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	h.Write([]byte{'/'})
	h.Write([]byte(filename))
	return int(h.Sum32() % uint32(n))
}

func (p *Pool) runWorker(id int, queue <-chan job) {
	defer p.wg.Done()

	open := make(map[string]*upload)
	defer func() {
		for key, up := range open {
			if err := up.ledger.close(); err != nil {
				p.logger.Error("Ledger close failed", "upload", key, "error", err)
			}
			if err := up.file.Close(); err != nil {
				p.logger.Error("File close failed", "upload", key, "error", err)
			}
		}
	}()

	for j := range queue {
		j.ack(p.apply(open, j.req))
	}
}

// uploadKey identifies one reassembly. The filename must already be
// sanitized, otherwise distinct raw spellings of one on-disk file would
// get separate handles and ledgers.
func uploadKey(sessionID, filename string) string {
	return sessionID + "/" + filename
}

// apply performs one chunk against the worker-local upload state and
// builds the ack. Only the owning worker touches an upload, so no
// locking is needed here.
func (p *Pool) apply(open map[string]*upload, req protocol.UploadChunkRequest) protocol.UploadChunkAck {
	ack := protocol.UploadChunkAck{Filename: req.Filename, SeqNo: req.SeqNo}

	name := sanitizeFilename(req.Filename)
	if name == "" {
		ack.Error = protocol.CodeFileIO
		return ack
	}

	key := uploadKey(req.SessionID, name)
	up, ok := open[key]
	if !ok {
		var err error
		if up, err = p.openUpload(req.SessionID, name); err != nil {
			p.logger.Error("Upload open failed", "upload", key, "error", err)
			ack.Error = protocol.CodeFileIO
			return ack
		}
		open[key] = up
	}

	if req.SeqNo != up.ledger.nextSeq() {
		ack.Error = protocol.CodeChunkOutOfOrder
		ack.SeqNo = up.ledger.nextSeq()
		ack.AckedSize = up.ledger.ackedSize()
		return ack
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		ack.Error = protocol.CodeJSONParse
		return ack
	}

	n, err := up.file.Write(data)
	if err != nil {
		p.logger.Error("Chunk write failed", "upload", key, "seq", req.SeqNo, "error", err)
		ack.Error = protocol.CodeFileIO
		return ack
	}
	if err := up.file.Sync(); err != nil {
		ack.Error = protocol.CodeFileIO
		return ack
	}

	acked := up.ledger.ackedSize() + int64(n)
	if err := up.ledger.record(acked, req.SeqNo+1); err != nil {
		ack.Error = protocol.CodeFileIO
		return ack
	}

	metrics.UploadChunks.Inc()
	metrics.UploadBytes.Add(float64(n))
	ack.AckedSize = acked

	if req.EOF {
		delete(open, key)
		if err := up.file.Close(); err != nil {
			ack.Error = protocol.CodeFileIO
			return ack
		}
		if err := up.ledger.remove(); err != nil {
			p.logger.Warn("Ledger remove failed", "upload", key, "error", err)
		}
		ack.Done = true
		p.logger.Info("Upload complete", "upload", key, "size", acked)
	}
	return ack
}

// openUpload opens or resumes the data file for one upload. The data
// file is reconciled against the ledger watermark: overhang beyond the
// acknowledged offset is cut off, and a data file shorter than the
// watermark means lost bytes, so the upload restarts from zero.
func (p *Pool) openUpload(sessionID, name string) (*upload, error) {
	dir := filepath.Join(p.dataDir, sanitizeFilename(sessionID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dataPath := filepath.Join(dir, name)

	led, err := openLedger(dataPath + ".ledger")
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(dataPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		led.close()
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		led.close()
		f.Close()
		return nil, err
	}

	acked := led.ackedSize()
	switch {
	case fi.Size() < acked:
		p.logger.Warn("Data file behind ledger, restarting upload",
			"file", dataPath, "disk", fi.Size(), "acked", acked)
		if err := reset(f, led); err != nil {
			led.close()
			f.Close()
			return nil, err
		}
	case fi.Size() > acked:
		if err := f.Truncate(acked); err != nil {
			led.close()
			f.Close()
			return nil, err
		}
	}

	if _, err := f.Seek(led.ackedSize(), 0); err != nil {
		led.close()
		f.Close()
		return nil, err
	}
	return &upload{file: f, ledger: led}, nil
}

func reset(f *os.File, led *ledger) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	return led.record(0, 0)
}

// sanitizeFilename strips any path components. Uploads may not escape
// the data directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == ".." || strings.ContainsRune(name, os.PathSeparator) {
		return ""
	}
	return name
}

// DataPath reports where a finished upload lives on disk.
func (p *Pool) DataPath(sessionID, filename string) string {
	return filepath.Join(p.dataDir, sanitizeFilename(sessionID), sanitizeFilename(filename))
}

// String describes the pool for logs.
func (p *Pool) String() string {
	return fmt.Sprintf("transfer.Pool(workers=%d, dir=%s)", len(p.queues), p.dataDir)
}
