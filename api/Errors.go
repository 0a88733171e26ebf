package api

import "errors"

// Errors returned by IMqttConnection implementations through their tokens
var (
	// ErrNotConnected when publishing without a broker connection
	ErrNotConnected = errors.New("mqtt: not connected to a broker")

	// ErrInvalidQos when a QoS level other than 0 or 1 is requested
	ErrInvalidQos = errors.New("mqtt: invalid QoS, must be 0 or 1")

	// ErrEmptyTopic when publishing or subscribing without a topic
	ErrEmptyTopic = errors.New("mqtt: topic must not be empty")

	// ErrConnectionClosed when the connection was closed while the
	// operation was still pending
	ErrConnectionClosed = errors.New("mqtt: connection closed")
)
