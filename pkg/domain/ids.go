package domain

import "github.com/google/uuid"

// RequestID correlates an asynchronous response back to the request that
// caused it. It is caller-chosen and unique per logical operation, so it is
// kept as an opaque string rather than a parsed UUID.
type RequestID string

// NewRequestID returns a fresh identifier for callers that do not supply one.
func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

func (r RequestID) IsEmpty() bool {
	return r == ""
}

func (r RequestID) String() string {
	return string(r)
}

// SessionID identifies a verification session issued by the backend.
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func (s SessionID) IsEmpty() bool {
	return s == ""
}

func (s SessionID) String() string {
	return string(s)
}
