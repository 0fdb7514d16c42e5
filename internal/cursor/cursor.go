// Package cursor encodes and decodes offset-based connection cursors.
// A cursor is base64("arrayconnection:<offset>"), the format used by
// graphql-relay array connections.
package cursor

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"relay-graphql/internal/apperrors"
)

const prefix = "arrayconnection:"

// MaxOffset bounds decoded offsets, so one past any of them still fits the
// descriptor.
const MaxOffset = math.MaxInt32

var errMalformed = errors.New("cursor is not an array connection offset")

// Encode returns the cursor for a zero-based row offset.
func Encode(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(prefix + strconv.Itoa(offset)))
}

// Decode returns the offset a cursor encodes. An empty cursor decodes to 0.
// Failures are *apperrors.Error of kind InvalidCursor.
func Decode(c string) (int, error) {
	if c == "" {
		return 0, nil
	}
	offset, err := parse(c)
	if err != nil {
		return 0, apperrors.InvalidCursor("", c, err)
	}
	return offset, nil
}

// OffsetAfter converts the value of an "after"-style argument into the
// offset of the first row to return: 0 when the cursor is empty, one past
// the cursor's offset otherwise. arg names the argument for error reporting.
func OffsetAfter(arg, c string) (int, error) {
	if c == "" {
		return 0, nil
	}
	offset, err := parse(c)
	if err != nil {
		return 0, apperrors.InvalidCursor(arg, c, err)
	}
	return offset + 1, nil
}

func parse(c string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(c)
	if err != nil {
		return 0, fmt.Errorf("invalid base64: %w", err)
	}
	s := string(raw)
	if !strings.HasPrefix(s, prefix) {
		return 0, errMalformed
	}
	digits := s[len(prefix):]
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, errMalformed
	}
	offset, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid offset: %w", err)
	}
	if offset >= MaxOffset {
		return 0, fmt.Errorf("offset %d is out of range", offset)
	}
	return offset, nil
}
