// Package codec implements the binary wire format for orders and the
// textual retry-attempt header riding alongside the payload
package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"orderflow/internal/models"
)

// Wire layout: uvarint length + bytes for OrderID, uvarint length + bytes
// for Product, 8 bytes big-endian IEEE-754 for Price. No trailing bytes.

// An Error is a codec failure during encode or decode
type Error struct {
	Op  string
	Msg string
}

// Error is an interface implementation for errors
func (e *Error) Error() string {
	return fmt.Sprintf("codec %s: %s", e.Op, e.Msg)
}

func encodeError(format string, args ...any) *Error {
	return &Error{Op: "encode", Msg: fmt.Sprintf(format, args...)}
}

func decodeError(format string, args ...any) *Error {
	return &Error{Op: "decode", Msg: fmt.Sprintf(format, args...)}
}

// Encode serializes an order into its binary form. A nil order encodes to a
// nil payload, matching tombstone semantics of the transport.
func Encode(order *models.Order) ([]byte, error) {
	if order == nil {
		return nil, nil
	}

	if math.IsNaN(order.Price) || math.IsInf(order.Price, 0) {
		return nil, encodeError("non-finite price for order %s", order.OrderID)
	}

	buf := make([]byte, 0, len(order.OrderID)+len(order.Product)+16)
	buf = binary.AppendUvarint(buf, uint64(len(order.OrderID)))
	buf = append(buf, order.OrderID...)
	buf = binary.AppendUvarint(buf, uint64(len(order.Product)))
	buf = append(buf, order.Product...)
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(order.Price))

	return buf, nil
}

// Decode deserializes an order from its binary form. A nil payload decodes
// to a nil order, matching tombstone semantics of the transport.
func Decode(data []byte) (*models.Order, error) {
	if data == nil {
		return nil, nil
	}

	orderID, rest, err := readString(data, "order_id")
	if err != nil {
		return nil, err
	}

	product, rest, err := readString(rest, "product")
	if err != nil {
		return nil, err
	}

	if len(rest) != 8 {
		return nil, decodeError("expected 8 price bytes, got %d", len(rest))
	}

	price := math.Float64frombits(binary.BigEndian.Uint64(rest))
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, decodeError("non-finite price for order %s", orderID)
	}

	return &models.Order{OrderID: orderID, Product: product, Price: price}, nil
}

// readString consumes one uvarint-length-prefixed string from data
func readString(data []byte, field string) (string, []byte, error) {
	length, n := binary.Uvarint(data)
	if n <= 0 {
		return "", nil, decodeError("invalid %s length prefix", field)
	}

	rest := data[n:]
	if uint64(len(rest)) < length {
		return "", nil, decodeError("truncated %s: want %d bytes, have %d", field, length, len(rest))
	}

	return string(rest[:length]), rest[length:], nil
}
