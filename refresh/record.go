package refresh

import (
	"encoding/binary"
	"fmt"
)

// Binary record layout, version 1:
//
//	[0]     version
//	[1]     revoked flag (0/1) -- fixed offset, flipped in place by Lua
//	[2:10]  issued_at, unix seconds, big endian
//	[10:18] expires_at, unix seconds, big endian
//	[18:20] user id length, big endian
//	[20:]   user id bytes
const recordVersionV1 = 1

const recordHeaderSize = 20

func encodeRecord(record *Record) []byte {
	userID := []byte(record.UserID)
	buf := make([]byte, recordHeaderSize+len(userID))

	buf[0] = recordVersionV1
	if record.Revoked {
		buf[1] = 1
	}
	binary.BigEndian.PutUint64(buf[2:10], uint64(record.IssuedAt))
	binary.BigEndian.PutUint64(buf[10:18], uint64(record.ExpiresAt))
	binary.BigEndian.PutUint16(buf[18:20], uint16(len(userID)))
	copy(buf[recordHeaderSize:], userID)

	return buf
}

func decodeRecord(data []byte) (*Record, error) {
	if len(data) < recordHeaderSize {
		return nil, fmt.Errorf("%w: truncated", ErrRecordCorrupt)
	}
	if data[0] != recordVersionV1 {
		return nil, fmt.Errorf("%w: unknown version %d", ErrRecordCorrupt, data[0])
	}

	userLen := int(binary.BigEndian.Uint16(data[18:20]))
	if len(data) != recordHeaderSize+userLen {
		return nil, fmt.Errorf("%w: length mismatch", ErrRecordCorrupt)
	}

	return &Record{
		UserID:    string(data[recordHeaderSize:]),
		IssuedAt:  int64(binary.BigEndian.Uint64(data[2:10])),
		ExpiresAt: int64(binary.BigEndian.Uint64(data[10:18])),
		Revoked:   data[1] == 1,
	}, nil
}
