// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunkstore persists the per-chunk classification statistics a
// Driver run produces — boundaries, strong/weak counts and compression —
// to an ordered on-disk store, so cmd/repack-audit can inspect a
// completed or in-progress run without rereading the catalogs.
package chunkstore

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"

	"modernc.org/kv"
)

// Record is one chunk's classification summary. Compression is reported
// at both reference temperatures and at their union (spec.md §4.7:
// "Reports, per chunk, the compression percentage at both temperatures
// and the union").
type Record struct {
	Suffix          string  // wavenumber-range group suffix, e.g. "__00000-00100"
	ChunkIndex      int64   // 0-based index within the suffix group
	WnLo, WnHi      float64 // chunk's wavenumber bounds (cm^-1)
	NumTotal        int64   // transitions read into the chunk
	NumStrong       int64   // transitions written to the LBL stream (union)
	NumWeak         int64   // transitions folded into the continuum grid
	NumStrongLow    int64   // transitions flagged strong at tLow
	NumStrongHigh   int64   // transitions flagged strong at tHigh
	Compression     float64 // NumStrong / NumTotal, in [0, 1] (union)
	CompressionLow  float64 // NumStrongLow / NumTotal, in [0, 1]
	CompressionHigh float64 // NumStrongHigh / NumTotal, in [0, 1]
}

var order = binary.BigEndian

// marshalKey encodes (Suffix, ChunkIndex) as an ordered byte key: string
// length prefix, then bytes, then a big-endian int64, mirroring
// internal/store.MarshalBlastRecordKey's length-prefixed string encoding.
func marshalKey(suffix string, chunkIndex int64) []byte {
	var buf bytes.Buffer
	var b [8]byte
	order.PutUint64(b[:], uint64(len(suffix)))
	buf.Write(b[:])
	buf.WriteString(suffix)
	order.PutUint64(b[:], uint64(chunkIndex))
	buf.Write(b[:])
	return buf.Bytes()
}

func unmarshalKey(data []byte) (suffix string, chunkIndex int64) {
	n := order.Uint64(data[:8])
	data = data[8:]
	suffix = string(data[:n])
	data = data[n:]
	chunkIndex = int64(order.Uint64(data[:8]))
	return suffix, chunkIndex
}

// byChunkKey is a kv compare function ordering by suffix then chunk
// index, matching internal/store's key-decode-then-compare shape.
func byChunkKey(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}
	sx, cx := unmarshalKey(x)
	sy, cy := unmarshalKey(y)
	switch {
	case sx < sy:
		return -1
	case sx > sy:
		return 1
	}
	switch {
	case cx < cy:
		return -1
	case cx > cy:
		return 1
	}
	return 0
}

// Store is an open chunk-statistics database.
type Store struct {
	db *kv.DB
}

// Create opens a new chunk-statistics store at path, truncating any
// existing file.
func Create(path string) (*Store, error) {
	db, err := kv.Create(path, &kv.Options{Compare: byChunkKey})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Open opens an existing chunk-statistics store for reading, as
// cmd/repack-audit does.
func Open(path string) (*Store, error) {
	db, err := kv.Open(path, &kv.Options{Compare: byChunkKey})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Put records r, keyed by (Suffix, ChunkIndex).
func (s *Store) Put(r Record) error {
	v, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Set(marshalKey(r.Suffix, r.ChunkIndex), v)
}

// Each calls fn for every record in key order, stopping and returning the
// first error fn or iteration returns.
func (s *Store) Each(fn func(Record) error) error {
	it, err := s.db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	for {
		_, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		var r Record
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
}

// Close closes the underlying store.
func (s *Store) Close() error { return s.db.Close() }
