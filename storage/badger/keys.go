package badger

// Key prefixes for different data types
const (
	docRecordPrefix  = "docrec"
	cacheEntryPrefix = "cachent"
)

// makeDocRecordKey generates a key for a document record by document ID.
func makeDocRecordKey(docID string) []byte {
	return []byte(docRecordPrefix + ":" + docID)
}

// makeCacheEntryKey generates a composite key for a cache entry.
// Format: prefix:inputHash:signature
// The input hash is fixed-length hex, so the composite is unambiguous even
// when the signature contains separators.
func makeCacheEntryKey(inputHash, signature string) []byte {
	prefix := cacheEntryPrefix + ":"
	totalSize := len(prefix) + len(inputHash) + 1 + len(signature)
	buf := make([]byte, totalSize)
	offset := copy(buf, prefix)
	offset += copy(buf[offset:], inputHash)
	buf[offset] = ':'
	offset++
	copy(buf[offset:], signature)
	return buf
}
