// Package zatca builds the QR payload required on Saudi simplified tax
// invoices: a base64 string of Tag-Length-Value triplets.
package zatca

import (
	"errors"
	"fmt"
)

// MaxValueLength is the largest value a single length byte can describe.
const MaxValueLength = 255

var (
	// ErrValueTooLong is returned when a field value does not fit in one length byte.
	// Values are rejected, never truncated.
	ErrValueTooLong = errors.New("tlv value exceeds 255 bytes")

	// ErrMalformedTLV is returned when decoding runs past the end of the input.
	ErrMalformedTLV = errors.New("malformed tlv payload")

	// ErrMissingField is returned when a decoded payload lacks one of tags 1-5.
	ErrMissingField = errors.New("qr payload is missing a required field")
)

// Field is one TLV triplet
type Field struct {
	Tag   byte
	Value string
}

// EncodeTLV concatenates the fields as tag, length, UTF-8 value.
func EncodeTLV(fields ...Field) ([]byte, error) {
	size := 0
	for _, f := range fields {
		if len(f.Value) > MaxValueLength {
			return nil, fmt.Errorf("tag %d is %d bytes: %w", f.Tag, len(f.Value), ErrValueTooLong)
		}
		size += 2 + len(f.Value)
	}

	out := make([]byte, 0, size)
	for _, f := range fields {
		out = append(out, f.Tag, byte(len(f.Value)))
		out = append(out, f.Value...)
	}
	return out, nil
}

// DecodeTLV splits a TLV byte stream back into fields, preserving order.
func DecodeTLV(data []byte) ([]Field, error) {
	var fields []Field
	for i := 0; i < len(data); {
		if i+2 > len(data) {
			return nil, fmt.Errorf("header at offset %d: %w", i, ErrMalformedTLV)
		}
		tag, length := data[i], int(data[i+1])
		i += 2
		if i+length > len(data) {
			return nil, fmt.Errorf("tag %d wants %d bytes, %d left: %w", tag, length, len(data)-i, ErrMalformedTLV)
		}
		fields = append(fields, Field{Tag: tag, Value: string(data[i : i+length])})
		i += length
	}
	return fields, nil
}
