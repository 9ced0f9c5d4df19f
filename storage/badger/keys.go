package badger

import (
	"encoding/binary"

	"github.com/poiesic/stratum/core"
)

// Key prefixes. Record and index prefixes end with ':' so none is a prefix of
// another. IDs are appended as 8 big-endian bytes so iteration follows ID order.
const (
	uploadPrefix         = "upl:"
	rawPrefix            = "raw:"
	rawFingerprintPrefix = "rawfp:"
	rawUploadPrefix      = "rawupl:"
	normalizedPrefix     = "nrm:"
	normalizedRawPrefix  = "nrmraw:"
	enrichmentPrefix     = "enr:"
	enrichmentNormPrefix = "enrnrm:"
	uploadIDSeq          = "seq:upl"
	rawIDSeq             = "seq:raw"
	normalizedIDSeq      = "seq:nrm"
	enrichmentIDSeq      = "seq:enr"
	idSize               = 8
)

// makeIDKey generates prefix:id.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+idSize)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePairKey generates prefix:parentID:childID for ownership indices.
func makePairKey(prefix string, parent, child core.ID) []byte {
	buf := make([]byte, len(prefix)+2*idSize)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(parent))
	offset += idSize
	binary.BigEndian.PutUint64(buf[offset:], uint64(child))
	return buf
}

// idFromKey extracts the ID that follows prefix.
func idFromKey(key []byte, prefix string) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(prefix):]))
}

// idFromKeyTail extracts the trailing ID of a key.
func idFromKeyTail(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-idSize:]))
}

func makeUploadKey(id core.ID) []byte { return makeIDKey(uploadPrefix, id) }

func makeRawKey(id core.ID) []byte { return makeIDKey(rawPrefix, id) }

func makeFingerprintKey(fingerprint string) []byte {
	return []byte(rawFingerprintPrefix + fingerprint)
}

func makeRawUploadKey(uploadID, rawID core.ID) []byte {
	return makePairKey(rawUploadPrefix, uploadID, rawID)
}

func makeNormalizedKey(id core.ID) []byte { return makeIDKey(normalizedPrefix, id) }

func makeNormalizedRawKey(rawID core.ID) []byte { return makeIDKey(normalizedRawPrefix, rawID) }

func makeEnrichmentKey(id core.ID) []byte { return makeIDKey(enrichmentPrefix, id) }

func makeEnrichmentNormKey(normalizedID core.ID) []byte {
	return makeIDKey(enrichmentNormPrefix, normalizedID)
}
