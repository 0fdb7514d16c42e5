// Package nodeid encodes and decodes Relay-style global node IDs.
//
// A global ID is the standard base64 encoding of "<Type>:<id>".
package nodeid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Encode returns the global ID of the row of typeName with primary key id.
func Encode(typeName string, id interface{}) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%v", typeName, id)))
}

// Decode splits a global ID into its type name and raw primary key.
func Decode(nodeID string) (string, string, error) {
	raw, err := base64.StdEncoding.DecodeString(nodeID)
	if err != nil {
		return "", "", fmt.Errorf("invalid id: %w", err)
	}
	typeName, id, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", "", errors.New("invalid id: missing type separator")
	}
	if typeName == "" {
		return "", "", errors.New("invalid id: missing type name")
	}
	if id == "" {
		return "", "", errors.New("invalid id: missing primary key")
	}
	return typeName, id, nil
}

// DecodeInt decodes a global ID whose primary key is an integer.
func DecodeInt(nodeID string) (string, int64, error) {
	typeName, raw, err := Decode(nodeID)
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid integer value for %s id", typeName)
	}
	return typeName, id, nil
}
