// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package encoding

import "gitlab.com/accumulatenetwork/commitverify/pkg/errors"

const (
	optionNone = 0x00
	optionSome = 0x01
)

// Option is a value that may be absent. It is encoded as 0x00 when empty and
// 0x01 followed by the value when present.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns an option holding v.
func Some[T any](v T) Option[T] { return Option[T]{value: v, ok: true} }

// None returns an empty option.
func None[T any]() Option[T] { return Option[T]{} }

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

// IsSome returns true if the option holds a value.
func (o Option[T]) IsSome() bool { return o.ok }

// WriteOption writes an option.
func WriteOption[T Marshaler](w *Writer, o Option[T]) {
	if !o.ok {
		w.WriteU8(optionNone)
		return
	}
	w.WriteU8(optionSome)
	w.WriteValue(o.value)
}

// ReadOption reads an option. A tag other than 0x00 or 0x01 fails with
// [errors.BadTag].
func ReadOption[T any, PT interface {
	*T
	Unmarshaler
}](r *Reader) Option[T] {
	tag := r.ReadU8()
	if r.Err() != nil {
		return Option[T]{}
	}
	switch tag {
	case optionNone:
		return Option[T]{}
	case optionSome:
		var v T
		PT(&v).UnmarshalConfined(r)
		if r.Err() != nil {
			return Option[T]{}
		}
		return Some(v)
	}
	r.Fail(errors.BadTag.WithFormat("invalid option tag %#02x", tag))
	return Option[T]{}
}

// Opt adapts an [Option] to [Marshaler] and [Unmarshaler] for use as a top
// level value.
type Opt[T any, PT interface {
	*T
	Value
}] struct {
	Option[T]
}

func (o Opt[T, PT]) MarshalConfined(w *Writer) {
	if !o.ok {
		w.WriteU8(optionNone)
		return
	}
	w.WriteU8(optionSome)
	PT(&o.value).MarshalConfined(w)
}

func (o *Opt[T, PT]) UnmarshalConfined(r *Reader) {
	o.Option = ReadOption[T, PT](r)
}
