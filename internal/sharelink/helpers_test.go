package sharelink

import (
	"encoding/binary"
	"hash/crc32"
)

// encodeRaw builds a well-formed token around an arbitrary payload.
func encodeRaw(payload []byte) string {
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc32.ChecksumIEEE(payload))
	return encoding.EncodeToString(payload) + separator + encoding.EncodeToString(sum[:])
}
