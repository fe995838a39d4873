package flatgeobuf

import (
	"encoding/binary"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
)

// encodeID encodes the id as the feature property stream:
// [2-byte column index][8-byte little-endian value].
func encodeID(id int64, column uint16) []byte {
	buf := make([]byte, 10)
	binary.LittleEndian.PutUint16(buf[0:2], column)
	binary.LittleEndian.PutUint64(buf[2:10], uint64(id))
	return buf
}

// decodeID scans a property stream for the id column and returns its value.
// Other columns are skipped by their encoded width.
func decodeID(data []byte, header *flattypes.Header) (int64, bool) {
	if len(data) == 0 || header == nil {
		return 0, false
	}

	offset := 0
	for offset+2 <= len(data) {
		colIndex := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
		offset += 2

		if colIndex >= header.ColumnsLength() {
			return 0, false
		}

		var col flattypes.Column
		if !header.Columns(&col, colIndex) {
			return 0, false
		}

		value, n, ok := readInteger(data[offset:], col.Type())
		if n == 0 {
			return 0, false
		}
		if ok && string(col.Name()) == IDColumn {
			return value, true
		}
		offset += n
	}

	return 0, false
}

// readInteger reads one property value. It returns the value when the column
// is an integer type, and the number of bytes the value occupies in any case.
// A zero width means the value is truncated or the type is not understood.
func readInteger(data []byte, colType flattypes.ColumnType) (int64, int, bool) {
	width := valueWidth(data, colType)
	if width == 0 || width > len(data) {
		return 0, 0, false
	}

	switch colType {
	case flattypes.ColumnTypeByte:
		return int64(int8(data[0])), width, true
	case flattypes.ColumnTypeUByte:
		return int64(data[0]), width, true
	case flattypes.ColumnTypeShort:
		return int64(int16(binary.LittleEndian.Uint16(data))), width, true
	case flattypes.ColumnTypeUShort:
		return int64(binary.LittleEndian.Uint16(data)), width, true
	case flattypes.ColumnTypeInt:
		return int64(int32(binary.LittleEndian.Uint32(data))), width, true
	case flattypes.ColumnTypeUInt:
		return int64(binary.LittleEndian.Uint32(data)), width, true
	case flattypes.ColumnTypeLong, flattypes.ColumnTypeULong:
		return int64(binary.LittleEndian.Uint64(data)), width, true
	default:
		return 0, width, false
	}
}

func valueWidth(data []byte, colType flattypes.ColumnType) int {
	switch colType {
	case flattypes.ColumnTypeBool, flattypes.ColumnTypeByte, flattypes.ColumnTypeUByte:
		return 1
	case flattypes.ColumnTypeShort, flattypes.ColumnTypeUShort:
		return 2
	case flattypes.ColumnTypeInt, flattypes.ColumnTypeUInt, flattypes.ColumnTypeFloat:
		return 4
	case flattypes.ColumnTypeLong, flattypes.ColumnTypeULong, flattypes.ColumnTypeDouble:
		return 8
	case flattypes.ColumnTypeString, flattypes.ColumnTypeJson,
		flattypes.ColumnTypeDateTime, flattypes.ColumnTypeBinary:
		// uint32 length prefix
		if len(data) < 4 {
			return 0
		}
		return 4 + int(binary.LittleEndian.Uint32(data))
	default:
		return 0
	}
}
