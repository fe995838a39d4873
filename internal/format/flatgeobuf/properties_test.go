package flatgeobuf

import (
	"encoding/binary"
	"testing"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
)

func TestEncodeID(t *testing.T) {
	data := encodeID(123456789, 0)
	if len(data) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(data))
	}

	if col := binary.LittleEndian.Uint16(data[:2]); col != 0 {
		t.Errorf("expected column 0, got %d", col)
	}
	if v := int64(binary.LittleEndian.Uint64(data[2:])); v != 123456789 {
		t.Errorf("expected 123456789, got %d", v)
	}
}

func TestReadInteger(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		colType  flattypes.ColumnType
		value    int64
		width    int
		integral bool
	}{
		{"byte", []byte{0xff}, flattypes.ColumnTypeByte, -1, 1, true},
		{"ubyte", []byte{0xff}, flattypes.ColumnTypeUByte, 255, 1, true},
		{"short", []byte{0xfe, 0xff}, flattypes.ColumnTypeShort, -2, 2, true},
		{"int", []byte{42, 0, 0, 0}, flattypes.ColumnTypeInt, 42, 4, true},
		{"long", []byte{7, 0, 0, 0, 0, 0, 0, 0}, flattypes.ColumnTypeLong, 7, 8, true},
		{"double", make([]byte, 8), flattypes.ColumnTypeDouble, 0, 8, false},
		{"bool", []byte{1}, flattypes.ColumnTypeBool, 0, 1, false},
		{"string", []byte{3, 0, 0, 0, 'a', 'b', 'c'}, flattypes.ColumnTypeString, 0, 7, false},
		{"truncated long", []byte{1, 2, 3}, flattypes.ColumnTypeLong, 0, 0, false},
		{"truncated string", []byte{9, 0, 0, 0, 'a'}, flattypes.ColumnTypeString, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, width, ok := readInteger(tt.data, tt.colType)
			if ok != tt.integral {
				t.Errorf("expected ok=%v, got %v", tt.integral, ok)
			}
			if width != tt.width {
				t.Errorf("expected width %d, got %d", tt.width, width)
			}
			if ok && value != tt.value {
				t.Errorf("expected value %d, got %d", tt.value, value)
			}
		})
	}
}

func TestDecodeID_NilHeader(t *testing.T) {
	if _, ok := decodeID(encodeID(1, 0), nil); ok {
		t.Error("expected no id without a header")
	}
}
