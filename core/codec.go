package core

import (
	"encoding/json"
	"fmt"
)

// EncodeSession serializes a session to its durable JSON form
func EncodeSession(s Session) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return string(b), nil
}

// DecodeSession parses the JSON form produced by EncodeSession
func DecodeSession(raw string) (Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return s, nil
}
