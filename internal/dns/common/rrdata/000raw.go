package rrdata

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// RawData holds the opaque rdata of a record type with no dedicated codec
// above. Its master-file presentation follows RFC 3597 §5's generic syntax,
// "\# <length> <hex>", the only textual form that can carry arbitrary wire
// bytes for a type this package doesn't otherwise understand.
type RawData []byte

// EncodeRawData parses the RFC 3597 generic syntax and returns the decoded
// wire bytes.
func EncodeRawData(data string) ([]byte, error) {
	fields := strings.Fields(data)
	if len(fields) < 2 || fields[0] != `\#` {
		return nil, fmt.Errorf(`unknown record type rdata must use RFC 3597 generic syntax: \# <length> <hex>, got %q`, data)
	}
	length, err := strconv.Atoi(fields[1])
	if err != nil || length < 0 {
		return nil, fmt.Errorf("invalid generic rdata length %q", fields[1])
	}
	wire, err := hex.DecodeString(strings.Join(fields[2:], ""))
	if err != nil {
		return nil, fmt.Errorf("invalid generic rdata hex: %w", err)
	}
	if len(wire) != length {
		return nil, fmt.Errorf("generic rdata length mismatch: declared %d, got %d bytes", length, len(wire))
	}
	return wire, nil
}

// decodeRawData is the inverse of EncodeRawData, rendering wire bytes back
// into RFC 3597 generic syntax.
func decodeRawData(data []byte) (string, error) {
	return fmt.Sprintf(`\# %d %s`, len(data), hex.EncodeToString(data)), nil
}
