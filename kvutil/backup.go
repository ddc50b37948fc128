// Copyright (c) 2023 BVK Chaitanya

package kvutil

import (
	"bufio"
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bvk/shopwatch/gobs"
	"github.com/bvkgo/kv"
)

// Export writes all database entries to w as a stream of gob-encoded
// gobs.KeyValue records.
func Export(ctx context.Context, r kv.Reader, w io.Writer) (count int, err error) {
	it, err := r.Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not create scanning iterator: %w", err)
	}
	defer kv.Close(it)

	encoder := gob.NewEncoder(w)
	for k, v, err := it.Fetch(ctx, false); err == nil; k, v, err = it.Fetch(ctx, true) {
		value, err := io.ReadAll(v)
		if err != nil {
			return count, fmt.Errorf("could not read value at key %q: %w", k, err)
		}
		if err := encoder.Encode(&gobs.KeyValue{Key: k, Value: value}); err != nil {
			return count, fmt.Errorf("could not encode key/value item: %w", err)
		}
		count++
	}
	if _, _, err := it.Fetch(ctx, false); err != nil && !errors.Is(err, io.EOF) {
		return count, fmt.Errorf("iterator fetch has failed: %w", err)
	}
	return count, nil
}

// BackupDB exports the database into the file atomically.
func BackupDB(ctx context.Context, db kv.Database, file string) (count int, status error) {
	abspath, err := filepath.Abs(file)
	if err != nil {
		return 0, fmt.Errorf("could not determine absolute path: %w", err)
	}

	fp, err := os.CreateTemp(filepath.Dir(abspath), ".backup*")
	if err != nil {
		return 0, fmt.Errorf("could not create temp file: %w", err)
	}
	defer func() {
		fp.Close()
		if status != nil {
			os.Remove(fp.Name())
		}
	}()

	bw := bufio.NewWriter(fp)
	if err := kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		count, err = Export(ctx, r, bw)
		return err
	}); err != nil {
		return 0, fmt.Errorf("could not export db content: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("could not flush the bufio writer: %w", err)
	}
	if err := fp.Sync(); err != nil {
		return 0, fmt.Errorf("could not sync the output file: %w", err)
	}
	if err := os.Rename(fp.Name(), abspath); err != nil {
		return 0, fmt.Errorf("could not rename temp file to %q: %w", abspath, err)
	}
	return count, nil
}

// Import replaces all database entries with the gobs.KeyValue records
// decoded from r. Returns the number of restored records.
func Import(ctx context.Context, rw kv.ReadWriter, r io.Reader) (count int, err error) {
	it, err := rw.Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not create scanning iterator: %w", err)
	}
	var stale []string
	for k, _, err := it.Fetch(ctx, false); err == nil; k, _, err = it.Fetch(ctx, true) {
		stale = append(stale, k)
	}
	_, _, ferr := it.Fetch(ctx, false)
	kv.Close(it)
	if ferr != nil && !errors.Is(ferr, io.EOF) {
		return 0, fmt.Errorf("iterator fetch has failed: %w", ferr)
	}
	for _, k := range stale {
		if err := rw.Delete(ctx, k); err != nil {
			return 0, fmt.Errorf("could not delete key %q: %w", k, err)
		}
	}

	decoder := gob.NewDecoder(r)
	for {
		var item gobs.KeyValue
		if err := decoder.Decode(&item); err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, fmt.Errorf("could not decode item from backup: %w", err)
		}
		if err := rw.Set(ctx, item.Key, bytes.NewReader(item.Value)); err != nil {
			return count, fmt.Errorf("could not restore at key %q: %w", item.Key, err)
		}
		count++
	}
}

// RestoreDB replaces the database content with the backup file.
func RestoreDB(ctx context.Context, db kv.Database, file string) (count int, status error) {
	fp, err := os.Open(file)
	if err != nil {
		return 0, fmt.Errorf("could not open backup file: %w", err)
	}
	defer fp.Close()

	br := bufio.NewReader(fp)
	if err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		count, err = Import(ctx, rw, br)
		return err
	}); err != nil {
		return 0, fmt.Errorf("could not import db content: %w", err)
	}
	return count, nil
}
