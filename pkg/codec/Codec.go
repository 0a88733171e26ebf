// Package codec with encoding and decoding of service message payloads.
// All service payloads are UTF-8 encoded JSON documents.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// DecodeError holds a payload that could not be decoded along with the
// cause. The raw payload is kept so handlers can log or inspect what the
// service actually sent.
type DecodeError struct {
	// Payload with the raw bytes as received
	Payload []byte
	// Err with the cause of the failure
	Err error
}

// Error describes the failure and the payload size
func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode payload of %d bytes: %s", len(e.Payload), e.Err)
}

// Unwrap returns the cause
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode a request or event into its JSON wire format.
//
//	v is the value to encode, typically a pointer to a request struct
//
// Returns the payload bytes or an error if the value cannot be represented
// as JSON. Encode performs no I/O.
func Encode(v interface{}) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cannot encode %T: %w", v, err)
	}
	return payload, nil
}

// Decode a raw payload into the given value.
// The payload must be valid UTF-8 and valid JSON. Fields in the payload
// without a counterpart in the value are ignored, so unknown fields added
// by the service do not break older clients.
//
//	payload with the raw bytes as received from the connection
//	v is a pointer to the value to decode into
//
// Returns nil, or a *DecodeError carrying the raw payload.
func Decode(payload []byte, v interface{}) error {
	if !utf8.Valid(payload) {
		return &DecodeError{Payload: payload, Err: errors.New("payload is not valid UTF-8")}
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return &DecodeError{Payload: payload, Err: err}
	}
	return nil
}
