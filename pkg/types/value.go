// pkg/types/value.go
package types

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueType represents the type of a column value
type ValueType int

const (
	TypeNull ValueType = iota
	TypeInt
	TypeFloat
	TypeText
	TypeBlob
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeInt:
		return "INTEGER"
	case TypeFloat:
		return "REAL"
	case TypeText:
		return "TEXT"
	case TypeBlob:
		return "BLOB"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Value represents a column value
type Value struct {
	typ      ValueType
	intVal   int64
	floatVal float64
	textVal  string
	blobVal  []byte
}

func NewNull() Value {
	return Value{typ: TypeNull}
}

func NewInt(i int64) Value {
	return Value{typ: TypeInt, intVal: i}
}

func NewFloat(f float64) Value {
	return Value{typ: TypeFloat, floatVal: f}
}

func NewText(s string) Value {
	return Value{typ: TypeText, textVal: s}
}

func NewBlob(b []byte) Value {
	return Value{typ: TypeBlob, blobVal: b}
}

func (v Value) Type() ValueType { return v.typ }
func (v Value) IsNull() bool    { return v.typ == TypeNull }
func (v Value) Int() int64      { return v.intVal }
func (v Value) Float() float64  { return v.floatVal }
func (v Value) Text() string    { return v.textVal }
func (v Value) Blob() []byte    { return v.blobVal }

// class groups types that compare against each other.
func (v Value) class() int {
	switch v.typ {
	case TypeNull:
		return 0
	case TypeInt, TypeFloat:
		return 1
	case TypeText:
		return 2
	default:
		return 3
	}
}

// Compare orders values the way an index does: NULL first, then numbers
// (integers and reals compared by value), then text, then blobs.
func Compare(a, b Value) int {
	if c := cmp.Compare(a.class(), b.class()); c != 0 {
		return c
	}
	switch a.typ {
	case TypeNull:
		return 0
	case TypeText:
		return strings.Compare(a.textVal, b.textVal)
	case TypeBlob:
		return bytes.Compare(a.blobVal, b.blobVal)
	}

	if a.typ == TypeInt && b.typ == TypeInt {
		return cmp.Compare(a.intVal, b.intVal)
	}
	return compareNumeric(a, b)
}

func compareNumeric(a, b Value) int {
	af, bf := a.asFloat(), b.asFloat()
	if c := cmp.Compare(af, bf); c != 0 {
		return c
	}
	// equal as floats; large integers may still differ
	if a.typ == TypeInt && b.typ == TypeFloat && math.Abs(bf) >= 1<<53 {
		return compareIntFloat(a.intVal, bf)
	}
	if a.typ == TypeFloat && b.typ == TypeInt && math.Abs(af) >= 1<<53 {
		return -compareIntFloat(b.intVal, af)
	}
	return 0
}

// compareIntFloat compares i with an integral f. Floats outside the int64
// range are ordered by sign, as converting them is not defined.
func compareIntFloat(i int64, f float64) int {
	switch {
	case f >= 1<<63:
		return -1
	case f < -(1 << 63):
		return 1
	}
	return cmp.Compare(i, int64(f))
}

func (v Value) asFloat() float64 {
	if v.typ == TypeInt {
		return float64(v.intVal)
	}
	return v.floatVal
}

// Equal reports whether Compare(v, o) == 0.
func (v Value) Equal(o Value) bool {
	return Compare(v, o) == 0
}

func (v Value) String() string {
	switch v.typ {
	case TypeNull:
		return "NULL"
	case TypeInt:
		return strconv.FormatInt(v.intVal, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case TypeText:
		return strconv.Quote(v.textVal)
	default:
		return fmt.Sprintf("x'%x'", v.blobVal)
	}
}
