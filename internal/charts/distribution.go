package charts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Bucket is one named count of an aggregate mapping.
type Bucket struct {
	Name  string
	Count int64
}

// Distribution is an aggregate mapping that keeps the key order of the JSON object
// it was decoded from. Names are unique; a repeated key keeps its first position and
// takes the last value.
type Distribution []Bucket

// Aggregates is the summary served by the dashboard endpoint.
type Aggregates struct {
	ProductTypes Distribution `json:"productTypeChart"`
	KAM          Distribution `json:"KAMChart"`
}

// UnmarshalJSON decodes a JSON object of name to non-negative integer count.
// null decodes to an absent (nil) distribution.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("distribution: expected object")
	}
	out := Distribution{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return errors.New("distribution: expected key")
		}
		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return fmt.Errorf("distribution: %q: %w", name, err)
		}
		count, err := num.Int64()
		if err != nil || count < 0 {
			return fmt.Errorf("distribution: %q: count %s is not a non-negative integer", name, num)
		}
		if pos, seen := index[name]; seen {
			out[pos].Count = count
			continue
		}
		index[name] = len(out)
		out = append(out, Bucket{Name: name, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("distribution: trailing data")
	}
	*d = out
	return nil
}

// MarshalJSON encodes the distribution as a JSON object in bucket order.
func (d Distribution) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bucket := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(bucket.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", bucket.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Total sums every bucket count.
func (d Distribution) Total() int64 {
	var total int64
	for _, bucket := range d {
		total += bucket.Count
	}
	return total
}
