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
	"encoding/binary"
	"os"

	"github.com/tysonmote/gommap"
)

/*
LEDGER FORMAT

One ledger sidecar per in-progress upload, memory-mapped:

	+--------------------+-------------------+---------------------+
	| AckedSize (8 bytes) | NextSeq (4 bytes) | Reserved (4 bytes) |
	+--------------------+-------------------+---------------------+

AckedSize is the number of bytes durably appended to the data file and
acknowledged to the client. NextSeq is the sequence number the upload
expects next. The ledger is synced after every applied chunk, so after
a crash the pair tells a restarted worker exactly where to resume. The
client also reports its own view of the acknowledged size, but the
ledger is authoritative and the data file is reconciled against it.
*/

const ledgerWidth = 16

var enc = binary.BigEndian

// ledger is the memory-mapped resume record for one upload.
type ledger struct {
	file *os.File
	mmap gommap.MMap
}

// openLedger creates or reopens the ledger at path.
func openLedger(path string) (*ledger, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if err := os.Truncate(path, ledgerWidth); err != nil {
		f.Close()
		return nil, err
	}

	l := &ledger{file: f}
	if l.mmap, err = gommap.Map(f.Fd(), gommap.PROT_READ|gommap.PROT_WRITE, gommap.MAP_SHARED); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

func (l *ledger) ackedSize() int64 { return int64(enc.Uint64(l.mmap[0:8])) }
func (l *ledger) nextSeq() uint32  { return enc.Uint32(l.mmap[8:12]) }

// record stores the new watermark and syncs it to disk before the
// chunk is acknowledged.
func (l *ledger) record(ackedSize int64, nextSeq uint32) error {
	enc.PutUint64(l.mmap[0:8], uint64(ackedSize))
	enc.PutUint32(l.mmap[8:12], nextSeq)
	return l.mmap.Sync(gommap.MS_SYNC)
}

func (l *ledger) close() error {
	if err := l.mmap.Sync(gommap.MS_SYNC); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

// remove closes the ledger and deletes its file. Called when an upload
// completes and there is nothing left to resume.
func (l *ledger) remove() error {
	name := l.file.Name()
	if err := l.close(); err != nil {
		return err
	}
	return os.Remove(name)
}
