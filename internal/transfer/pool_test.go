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

package transfer

import (
	"bytes"
	"encoding/base64"
	"os"
	"testing"
	"time"

	"flychat/internal/protocol"
)

func newTestPool(t *testing.T, dir string, workers int) *Pool {
	t.Helper()
	p, err := NewPool(dir, workers)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

// submitWait pushes one chunk and blocks for its ack.
func submitWait(t *testing.T, p *Pool, req protocol.UploadChunkRequest) protocol.UploadChunkAck {
	t.Helper()
	ch := make(chan protocol.UploadChunkAck, 1)
	p.Submit(req, func(a protocol.UploadChunkAck) { ch <- a })
	select {
	case a := <-ch:
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for chunk ack")
		return protocol.UploadChunkAck{}
	}
}

func chunkReq(session, name string, seq uint32, data []byte, eof bool) protocol.UploadChunkRequest {
	return protocol.UploadChunkRequest{
		SessionID: session,
		Filename:  name,
		SeqNo:     seq,
		Data:      base64.StdEncoding.EncodeToString(data),
		EOF:       eof,
	}
}

func makePayload(n int) []byte {
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	return payload
}

func TestUploadReassemblesInOrder(t *testing.T) {
	dir := t.TempDir()
	p := newTestPool(t, dir, 4)

	payload := makePayload(5000)
	const chunkSize = 2048

	var seq uint32
	var sent int64
	for off := 0; off < len(payload); off += chunkSize {
		end := off + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		eof := end == len(payload)
		ack := submitWait(t, p, chunkReq("sess-1", "photo.png", seq, payload[off:end], eof))
		if ack.Error != protocol.CodeSuccess {
			t.Fatalf("Expected success for seq %d, got code %d", seq, ack.Error)
		}
		sent += int64(end - off)
		if ack.AckedSize != sent {
			t.Errorf("Expected acked size %d after seq %d, got %d", sent, seq, ack.AckedSize)
		}
		if ack.Done != eof {
			t.Errorf("Expected done=%v at seq %d, got %v", eof, seq, ack.Done)
		}
		seq++
	}
	if seq != 3 {
		t.Errorf("Expected exactly 3 chunks, sent %d", seq)
	}

	got, err := os.ReadFile(p.DataPath("sess-1", "photo.png"))
	if err != nil {
		t.Fatalf("Failed to read reassembled file: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("Reassembled file differs from source payload")
	}
	if _, err := os.Stat(p.DataPath("sess-1", "photo.png") + ".ledger"); !os.IsNotExist(err) {
		t.Error("Expected ledger removed after completed upload")
	}
}

func TestEquivalentFilenameSpellingsShareUpload(t *testing.T) {
	p := newTestPool(t, t.TempDir(), 8)

	payload := makePayload(300)

	// All three spellings sanitize to report.bin and must hit the same
	// worker and the same open file handle.
	spellings := []string{"report.bin", "./report.bin", "sub/report.bin"}
	var sent int64
	for i, name := range spellings {
		eof := i == len(spellings)-1
		chunk := payload[i*100 : (i+1)*100]
		ack := submitWait(t, p, chunkReq("s", name, uint32(i), chunk, eof))
		if ack.Error != protocol.CodeSuccess {
			t.Fatalf("Expected seq %d via %q accepted, got code %d", i, name, ack.Error)
		}
		sent += int64(len(chunk))
		if ack.AckedSize != sent {
			t.Errorf("Expected acked size %d after %q, got %d", sent, name, ack.AckedSize)
		}
	}

	got, err := os.ReadFile(p.DataPath("s", "report.bin"))
	if err != nil {
		t.Fatalf("Failed to read reassembled file: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("Reassembled file differs from source payload")
	}
}

func TestOutOfOrderChunkRefusedWithWatermark(t *testing.T) {
	p := newTestPool(t, t.TempDir(), 2)

	data := makePayload(100)
	if ack := submitWait(t, p, chunkReq("s", "f.bin", 0, data, false)); ack.Error != protocol.CodeSuccess {
		t.Fatalf("Expected first chunk accepted, got code %d", ack.Error)
	}

	ack := submitWait(t, p, chunkReq("s", "f.bin", 5, data, false))
	if ack.Error != protocol.CodeChunkOutOfOrder {
		t.Fatalf("Expected out-of-order code, got %d", ack.Error)
	}
	if ack.SeqNo != 1 || ack.AckedSize != 100 {
		t.Errorf("Expected watermark seq=1 size=100 in refusal, got seq=%d size=%d", ack.SeqNo, ack.AckedSize)
	}

	// The correct next chunk still goes through.
	if ack := submitWait(t, p, chunkReq("s", "f.bin", 1, data, true)); ack.Error != protocol.CodeSuccess || !ack.Done {
		t.Errorf("Expected chunk 1 accepted and done, got code %d done %v", ack.Error, ack.Done)
	}
}

func TestResumeAfterRestart(t *testing.T) {
	dir := t.TempDir()
	payload := makePayload(5000)
	const chunkSize = 2048

	p1 := newTestPool(t, dir, 4)
	for seq := uint32(0); seq < 2; seq++ {
		off := int(seq) * chunkSize
		ack := submitWait(t, p1, chunkReq("sess-9", "big.dat", seq, payload[off:off+chunkSize], false))
		if ack.Error != protocol.CodeSuccess {
			t.Fatalf("Expected chunk %d accepted, got code %d", seq, ack.Error)
		}
	}
	p1.Close()

	// New pool over the same directory picks up where the ledger left off.
	p2 := newTestPool(t, dir, 4)
	ack := submitWait(t, p2, chunkReq("sess-9", "big.dat", 2, payload[2*chunkSize:], true))
	if ack.Error != protocol.CodeSuccess || !ack.Done {
		t.Fatalf("Expected resumed final chunk accepted, got code %d done %v", ack.Error, ack.Done)
	}
	if ack.AckedSize != int64(len(payload)) {
		t.Errorf("Expected acked size %d, got %d", len(payload), ack.AckedSize)
	}

	got, err := os.ReadFile(p2.DataPath("sess-9", "big.dat"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("Resumed file differs from source payload")
	}
}

func TestResumeTruncatesUnacknowledgedOverhang(t *testing.T) {
	dir := t.TempDir()
	payload := makePayload(2048)

	p1 := newTestPool(t, dir, 1)
	if ack := submitWait(t, p1, chunkReq("s", "x.bin", 0, payload, false)); ack.Error != protocol.CodeSuccess {
		t.Fatalf("Expected chunk accepted, got code %d", ack.Error)
	}
	p1.Close()

	// Simulate bytes that hit the disk but were never acknowledged.
	path := (&Pool{dataDir: dir}).DataPath("s", "x.bin")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte("junk-overhang"))
	f.Close()

	p2 := newTestPool(t, dir, 1)
	ack := submitWait(t, p2, chunkReq("s", "x.bin", 1, []byte("tail"), true))
	if ack.Error != protocol.CodeSuccess {
		t.Fatalf("Expected resumed chunk accepted, got code %d", ack.Error)
	}
	if want := int64(len(payload) + 4); ack.AckedSize != want {
		t.Errorf("Expected acked size %d, got %d", want, ack.AckedSize)
	}

	got, _ := os.ReadFile(path)
	if !bytes.Equal(got, append(append([]byte{}, payload...), []byte("tail")...)) {
		t.Error("Expected overhang truncated before resume")
	}
}

func TestInvalidBase64Refused(t *testing.T) {
	p := newTestPool(t, t.TempDir(), 1)
	ack := submitWait(t, p, protocol.UploadChunkRequest{
		SessionID: "s", Filename: "f", SeqNo: 0, Data: "%%% not base64 %%%",
	})
	if ack.Error != protocol.CodeJSONParse {
		t.Errorf("Expected parse error code, got %d", ack.Error)
	}
}

func TestFilenameEscapeRefused(t *testing.T) {
	p := newTestPool(t, t.TempDir(), 1)
	ack := submitWait(t, p, chunkReq("s", "..", 0, []byte("x"), false))
	if ack.Error != protocol.CodeFileIO {
		t.Errorf("Expected file IO code for path escape, got %d", ack.Error)
	}
}

func TestShardIsStable(t *testing.T) {
	a := shardOf("sess-1", "file.bin", 8)
	for i := 0; i < 100; i++ {
		if shardOf("sess-1", "file.bin", 8) != a {
			t.Fatal("Expected stable shard for identical upload key")
		}
	}
	if a < 0 || a >= 8 {
		t.Errorf("Expected shard in [0,8), got %d", a)
	}
}
