package storage

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/shopspring/decimal"

	"lexledger/internal/core"
)

const (
	FieldID          = "id"
	FieldCreatedDate = "created_date"
)

// TimestampLayout is a fixed-width UTC layout, so stamps sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is a stored document: field name to JSON-compatible value.
type Record map[string]any

// ID returns the record id or "".
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// Clone returns a shallow copy; record values are scalars.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// CloneAll copies a record list.
func CloneAll(recs []Record) []Record {
	if recs == nil {
		return nil
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}

// NewRecord prepares rec for insertion: it assigns id and creation time,
// normalizes values and validates the result for c.
func NewRecord(c Collection, rec Record, id string, now time.Time) (Record, error) {
	out := Record(core.PrepareRecord(rec))
	roundMoney(out)
	out[FieldID] = id
	out[FieldCreatedDate] = now.UTC().Format(TimestampLayout)
	if err := Validate(c, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Merge applies a normalized patch on top of existing. The id and creation
// time of existing are kept.
func Merge(c Collection, existing, patch Record) (Record, error) {
	out := existing.Clone()
	for k, v := range core.PrepareRecord(patch) {
		if k == FieldID || k == FieldCreatedDate {
			continue
		}
		out[k] = v
	}
	roundMoney(out)
	if err := Validate(c, out); err != nil {
		return nil, err
	}
	return out, nil
}

// roundMoney stores parsed monetary values at the ledger precision.
func roundMoney(rec Record) {
	for k, v := range rec {
		f, ok := v.(float64)
		if !ok || !core.IsMoneyField(k) {
			continue
		}
		rec[k] = core.RoundMoney(decimal.NewFromFloat(f)).InexactFloat64()
	}
}

// Encode converts a typed entity into a normalized record.
func Encode(v any) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return Record(core.PrepareRecord(rec)), nil
}

// Decode converts a record into a typed entity.
func Decode[T any](rec Record) (T, error) {
	var out T
	b, err := json.Marshal(rec)
	if err != nil {
		return out, fmt.Errorf("decode record %s: %w", rec.ID(), err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode record %s: %w", rec.ID(), err)
	}
	return out, nil
}

// DecodeAll decodes a record list, stopping at the first bad record.
func DecodeAll[T any](recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		v, err := Decode[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
