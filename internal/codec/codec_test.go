package codec

import (
	"errors"
	"math"
	"testing"

	"orderflow/internal/models"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	orders := []models.Order{
		{OrderID: "test-123", Product: "Laptop", Price: 99.99},
		{OrderID: "a", Product: "", Price: 0.0},
		{OrderID: "max", Product: "Monitor", Price: math.MaxFloat64},
		{OrderID: "tiny", Product: "Mouse", Price: math.SmallestNonzeroFloat64},
		{OrderID: "unicode-ид", Product: "Наушники", Price: 150.50},
	}

	for _, original := range orders {
		data, err := Encode(&original)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if len(data) == 0 {
			t.Fatalf("error: expected non-empty payload for %s", original.OrderID)
		}

		decoded, err := Decode(data)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if decoded == nil {
			t.Fatalf("error: expected order, got nil")
		}
		if *decoded != original {
			t.Errorf("error: round trip mismatch: got %+v, want %+v", *decoded, original)
		}
	}
}

func TestEncode_Nil(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if data != nil {
		t.Errorf("error: expected nil payload for nil order")
	}
}

func TestDecode_Nil(t *testing.T) {
	order, err := Decode(nil)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if order != nil {
		t.Errorf("error: expected nil order for nil payload")
	}
}

func TestEncode_NonFinitePrice(t *testing.T) {
	for _, price := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Encode(&models.Order{OrderID: "bad", Product: "Camera", Price: price})
		if err == nil {
			t.Fatalf("error: expected codec error for price %v", price)
		}

		var codecErr *Error
		if !errors.As(err, &codecErr) {
			t.Errorf("error: expected *codec.Error, got %T", err)
		}
	}
}

func TestDecode_Truncated(t *testing.T) {
	data, err := Encode(&models.Order{OrderID: "test-456", Product: "Tablet", Price: 250})
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	for cut := 1; cut < len(data); cut++ {
		if _, err := Decode(data[:cut]); err == nil {
			t.Errorf("error: expected decode error for payload cut at %d", cut)
		}
	}
}

func TestDecode_TrailingBytes(t *testing.T) {
	data, err := Encode(&models.Order{OrderID: "test-789", Product: "Speaker", Price: 42.42})
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	if _, err := Decode(append(data, 0x01)); err == nil {
		t.Errorf("error: expected decode error for trailing bytes")
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode([]byte("{not a binary order}")); err == nil {
		t.Errorf("error: expected decode error for garbage payload")
	}
}

func TestAttempt_RoundTrip(t *testing.T) {
	for _, attempt := range []int{0, 1, 2, 42, 1000} {
		got := ParseAttempt(AppendAttempt(attempt))
		if got != attempt {
			t.Errorf("error: attempt round trip: got %d, want %d", got, attempt)
		}
	}
}

func TestParseAttempt_Malformed(t *testing.T) {
	values := [][]byte{nil, {}, []byte("abc"), []byte("1.5"), []byte("-3"), []byte(" 2")}

	for _, value := range values {
		if got := ParseAttempt(value); got != 0 {
			t.Errorf("error: expected 0 for header %q, got %d", value, got)
		}
	}
}
