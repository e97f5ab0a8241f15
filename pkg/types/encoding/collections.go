// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package encoding

import (
	"slices"

	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

// Decoding never preallocates more than this many items, regardless of the
// declared length. The size limit of the reader bounds the rest.
const maxPrealloc = 1024

// Ordered is a value with a total order.
type Ordered[T any] interface {
	Compare(T) int
}

// Element is a set element: a value that can be encoded and ordered.
type Element[T any] interface {
	Marshaler
	Ordered[T]
}

// Key is a map key: a comparable value that can be encoded and ordered.
type Key[T any] interface {
	comparable
	Marshaler
	Ordered[T]
}

type ptrUnmarshaler[T any] interface {
	*T
	Unmarshaler
}

func prealloc(n int) int {
	if n > maxPrealloc {
		return maxPrealloc
	}
	return n
}

// WriteList writes a length-prefixed sequence in the given order.
func WriteList[T Marshaler](w *Writer, b Bound, items []T) {
	w.WriteLen(b, len(items))
	for _, v := range items {
		if w.Err() != nil {
			return
		}
		v.MarshalConfined(w)
	}
}

// ReadList reads a length-prefixed sequence.
func ReadList[T any, PT ptrUnmarshaler[T]](r *Reader, b Bound) []T {
	n := r.ReadLen(b)
	if r.Err() != nil {
		return nil
	}
	items := make([]T, 0, prealloc(n))
	for i := 0; i < n; i++ {
		var v T
		PT(&v).UnmarshalConfined(r)
		if r.Err() != nil {
			return nil
		}
		items = append(items, v)
	}
	return items
}

// WriteSet writes a length-prefixed set in ascending order. items is not
// modified. A duplicate fails with [errors.RepeatedValue].
func WriteSet[T Element[T]](w *Writer, b Bound, items []T) {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b T) int { return a.Compare(b) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Compare(sorted[i]) == 0 {
			w.Fail(errors.RepeatedValue.WithFormat("set contains a repeated value at index %d", i))
			return
		}
	}
	WriteList(w, b, sorted)
}

// ReadSet reads a length-prefixed set. Items must be strictly ascending: an
// out of order item fails with [errors.BrokenOrder] and a duplicate fails with
// [errors.RepeatedValue].
func ReadSet[T Ordered[T], PT ptrUnmarshaler[T]](r *Reader, b Bound) []T {
	n := r.ReadLen(b)
	if r.Err() != nil {
		return nil
	}
	items := make([]T, 0, prealloc(n))
	for i := 0; i < n; i++ {
		var v T
		PT(&v).UnmarshalConfined(r)
		if r.Err() != nil {
			return nil
		}
		if i > 0 && !checkOrder(r, items[i-1].Compare(v), i) {
			return nil
		}
		items = append(items, v)
	}
	return items
}

// WriteMap writes a length-prefixed map with entries in ascending key order.
func WriteMap[K Key[K], V Marshaler](w *Writer, b Bound, m map[K]V) {
	keys := SortedKeys(m)
	w.WriteLen(b, len(keys))
	for _, k := range keys {
		if w.Err() != nil {
			return
		}
		k.MarshalConfined(w)
		m[k].MarshalConfined(w)
	}
}

// ReadMap reads a length-prefixed map. Keys must be strictly ascending, as
// with [ReadSet].
func ReadMap[K interface {
	comparable
	Ordered[K]
}, V any, PK ptrUnmarshaler[K], PV ptrUnmarshaler[V]](r *Reader, b Bound) map[K]V {
	n := r.ReadLen(b)
	if r.Err() != nil {
		return nil
	}
	m := make(map[K]V, prealloc(n))
	var prev K
	for i := 0; i < n; i++ {
		var k K
		var v V
		PK(&k).UnmarshalConfined(r)
		PV(&v).UnmarshalConfined(r)
		if r.Err() != nil {
			return nil
		}
		if i > 0 && !checkOrder(r, prev.Compare(k), i) {
			return nil
		}
		m[k] = v
		prev = k
	}
	return m
}

func checkOrder(r *Reader, c, i int) bool {
	switch {
	case c == 0:
		r.Fail(errors.RepeatedValue.WithFormat("item %d repeats the previous item", i))
		return false
	case c > 0:
		r.Fail(errors.BrokenOrder.WithFormat("encoded values are not deterministically ordered: item %d is less than the previous item", i))
		return false
	}
	return true
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K interface {
	comparable
	Ordered[K]
}, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b K) int { return a.Compare(b) })
	return keys
}
