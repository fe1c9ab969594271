package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mus-format/mus-go/varint"
	"github.com/sievekit/sieve/core"
)

// Snapshot file layout:
//
//	magic "SIEV", format version byte
//	store region: region version, record count, records
//	cache region: region version, entry count, entries
//
// The two regions are versioned independently so either side can evolve
// without invalidating the other.
const (
	snapshotMagic         = "SIEV"
	snapshotFormatVersion = byte(1)
	storeRegionVersion    = uint64(1)
	cacheRegionVersion    = uint64(1)

	// restoreBatchSize caps the records written per Upsert call on restore;
	// badger rejects single transactions above a size limit.
	restoreBatchSize = 128
)

// Controller persists document store and transformation cache state as a
// single snapshot file, so dedup decisions stay reproducible across process
// restarts. Save writes both regions in one write-then-rename step: a partial
// write can never leave the store advanced while the cache is not, or vice
// versa.
type Controller struct {
	store  DocumentStore
	cache  TransformCache
	logger *slog.Logger
}

// NewController creates a Controller over the given store and cache.
func NewController(store DocumentStore, cache TransformCache, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:  store,
		cache:  cache,
		logger: logger.With("component", "snapshot"),
	}
}

// Save serializes the full store and cache state to path. The snapshot is
// written to a temporary file first and renamed into place, so readers never
// observe a half-written snapshot.
func (c *Controller) Save(ctx context.Context, path string) error {
	records, err := c.store.AllRecords(ctx)
	if err != nil {
		return fmt.Errorf("exporting store state: %w", err)
	}
	entries, err := c.cache.AllEntries(ctx)
	if err != nil {
		return fmt.Errorf("exporting cache state: %w", err)
	}

	size := len(snapshotMagic) + 1
	size += varint.Uint64.Size(storeRegionVersion)
	size += varint.Uint64.Size(uint64(len(records)))
	for _, record := range records {
		size += core.DocumentRecordMUS.Size(*record)
	}
	size += varint.Uint64.Size(cacheRegionVersion)
	size += varint.Uint64.Size(uint64(len(entries)))
	for _, entry := range entries {
		size += core.CacheEntryMUS.Size(*entry)
	}

	buf := make([]byte, size)
	n := copy(buf, snapshotMagic)
	buf[n] = snapshotFormatVersion
	n++
	n += varint.Uint64.Marshal(storeRegionVersion, buf[n:])
	n += varint.Uint64.Marshal(uint64(len(records)), buf[n:])
	for _, record := range records {
		n += core.DocumentRecordMUS.Marshal(*record, buf[n:])
	}
	n += varint.Uint64.Marshal(cacheRegionVersion, buf[n:])
	n += varint.Uint64.Marshal(uint64(len(entries)), buf[n:])
	for _, entry := range entries {
		n += core.CacheEntryMUS.Marshal(*entry, buf[n:])
	}

	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := file.Write(buf); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	c.logger.Info("snapshot saved", "path", path, "records", len(records), "entries", len(entries))
	return nil
}

// Load restores store and cache state from a snapshot previously written by
// Save. Data failing the magic, version or structural checks yields
// ErrCorruptState; partially applying a corrupt snapshot would silently
// defeat the dedup guarantee, so nothing is restored in that case.
func (c *Controller) Load(ctx context.Context, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	records, entries, err := decodeSnapshot(buf)
	if err != nil {
		return err
	}

	for start := 0; start < len(records); start += restoreBatchSize {
		end := min(start+restoreBatchSize, len(records))
		if err := c.store.Upsert(ctx, records[start:end]...); err != nil {
			return fmt.Errorf("restoring store state: %w", err)
		}
	}
	for _, entry := range entries {
		if err := c.cache.Put(ctx, entry.InputHash, entry.Signature, entry.Artifacts); err != nil {
			return fmt.Errorf("restoring cache state: %w", err)
		}
	}

	c.logger.Info("snapshot loaded", "path", path, "records", len(records), "entries", len(entries))
	return nil
}

func decodeSnapshot(buf []byte) ([]*core.DocumentRecord, []*core.CacheEntry, error) {
	headerLen := len(snapshotMagic) + 1
	if len(buf) < headerLen {
		return nil, nil, fmt.Errorf("%w: snapshot truncated", ErrCorruptState)
	}
	if string(buf[:len(snapshotMagic)]) != snapshotMagic {
		return nil, nil, fmt.Errorf("%w: bad magic", ErrCorruptState)
	}
	if buf[len(snapshotMagic)] != snapshotFormatVersion {
		return nil, nil, fmt.Errorf("%w: unsupported snapshot version %d", ErrCorruptState, buf[len(snapshotMagic)])
	}
	n := headerLen

	version, n1, err := varint.Uint64.Unmarshal(buf[n:])
	n += n1
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if version != storeRegionVersion {
		return nil, nil, fmt.Errorf("%w: unsupported store region version %d", ErrCorruptState, version)
	}
	count, n1, err := varint.Uint64.Unmarshal(buf[n:])
	n += n1
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	// Every serialized record occupies at least one byte, so a count larger
	// than the remaining buffer cannot come from a well-formed snapshot.
	if count > uint64(len(buf)-n) {
		return nil, nil, fmt.Errorf("%w: store region count %d exceeds snapshot size", ErrCorruptState, count)
	}
	records := make([]*core.DocumentRecord, 0, count)
	for i := uint64(0); i < count; i++ {
		record, n1, err := core.DocumentRecordMUS.Unmarshal(buf[n:])
		n += n1
		if err != nil {
			return nil, nil, fmt.Errorf("%w: record %d: %v", ErrCorruptState, i, err)
		}
		records = append(records, &record)
	}

	version, n1, err = varint.Uint64.Unmarshal(buf[n:])
	n += n1
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if version != cacheRegionVersion {
		return nil, nil, fmt.Errorf("%w: unsupported cache region version %d", ErrCorruptState, version)
	}
	count, n1, err = varint.Uint64.Unmarshal(buf[n:])
	n += n1
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if count > uint64(len(buf)-n) {
		return nil, nil, fmt.Errorf("%w: cache region count %d exceeds snapshot size", ErrCorruptState, count)
	}
	entries := make([]*core.CacheEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		entry, n1, err := core.CacheEntryMUS.Unmarshal(buf[n:])
		n += n1
		if err != nil {
			return nil, nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptState, i, err)
		}
		entries = append(entries, &entry)
	}

	if n != len(buf) {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptState, len(buf)-n)
	}
	return records, entries, nil
}
