package repository

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// encodeList marshals a string list for storage in a JSON column.
// nil encodes as an empty array so columns never hold SQL NULL.
func encodeList(v []string) []byte {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("[]")
	}
	return b
}

// decodeList unmarshals a JSON column into a string list.  Broken or
// empty payloads decode as an empty list rather than an error; these
// columns are presentation data, not invariants.
func decodeList(b []byte) []string {
	if len(b) == 0 {
		return []string{}
	}
	var v []string
	if err := json.Unmarshal(b, &v); err != nil || v == nil {
		return []string{}
	}
	return v
}

// dayOf truncates a timestamp to its UTC calendar day.  Availability
// entries and bookings are keyed by day, never by time of day.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isDuplicateKey reports whether err is a MySQL duplicate-key error.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func u64Ptr(ni sql.NullInt64) *uint64 {
	if !ni.Valid {
		return nil
	}
	v := uint64(ni.Int64)
	return &v
}

func f64Ptr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}
