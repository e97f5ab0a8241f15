// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import "strconv"

// Status is an error status code.
type Status uint64

const (
	// OK means the operation succeeded.
	OK Status = 200

	// BadRequest means the caller supplied an invalid argument.
	BadRequest Status = 400

	// NotFound means a requested value does not exist.
	NotFound Status = 404

	// NotAllowed means the operation is not permitted in the current state.
	NotAllowed Status = 405

	// EncodingError means a value could not be encoded or decoded.
	EncodingError Status = 420

	// IOError means the underlying reader or writer failed.
	IOError Status = 421

	// SizeLimit means an encoding exceeded its size limit.
	SizeLimit Status = 422

	// ValueOutOfRange means a decoded value is outside the range its type
	// allows.
	ValueOutOfRange Status = 423

	// BadTag means an enum, union or option tag is not known.
	BadTag Status = 424

	// BrokenOrder means set or map items are not in ascending order.
	BrokenOrder Status = 425

	// RepeatedValue means a set or map contains a duplicate item.
	RepeatedValue Status = 426

	// TrailingData means input remains after a top-level value was decoded.
	TrailingData Status = 427

	// InvalidUTF8 means string data is not valid UTF-8.
	InvalidUTF8 Status = 428

	// DataIntegrity means decoded data is internally inconsistent.
	DataIntegrity Status = 429

	// Empty means a commitment was requested for no messages and a zero
	// minimum depth.
	Empty Status = 440

	// TooManyMessages means the message count exceeds the protocol limit.
	TooManyMessages Status = 441

	// CantFitInMaxSlots means the messages cannot be placed without
	// exceeding the maximum tree depth.
	CantFitInMaxSlots Status = 442

	// InvalidProof means a proof is malformed or inconsistent with the
	// claimed data.
	InvalidProof Status = 443

	// InternalError means something went wrong that should not be possible.
	InternalError Status = 500

	// UnknownError means the cause of the error is unknown.
	UnknownError Status = 501

	// NotReady means the resource is closed or not yet open.
	NotReady Status = 503
)

var statusNames = map[Status]string{
	OK:                "ok",
	BadRequest:        "bad request",
	NotFound:          "not found",
	NotAllowed:        "not allowed",
	EncodingError:     "encoding error",
	IOError:           "i/o error",
	SizeLimit:         "size limit exceeded",
	ValueOutOfRange:   "value out of range",
	BadTag:            "unknown tag",
	BrokenOrder:       "encoded values are not deterministically ordered",
	RepeatedValue:     "repeated value",
	TrailingData:      "data not entirely consumed",
	InvalidUTF8:       "invalid utf-8",
	DataIntegrity:     "data integrity violation",
	Empty:             "empty",
	TooManyMessages:   "too many messages",
	CantFitInMaxSlots: "cannot fit in max slots",
	InvalidProof:      "invalid proof",
	InternalError:     "internal error",
	UnknownError:      "unknown error",
	NotReady:          "not ready",
}

// String returns the name of the status.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "status " + strconv.FormatUint(uint64(s), 10)
}

type statusType interface {
	~uint64
	error
	String() string
	IsKnownError() bool
}

// Error is an error with a status code, message, cause and call stack.
type Error = ErrorBase[Status]

type ErrorBase[Status statusType] struct {
	Message   string
	Code      Status
	Cause     *ErrorBase[Status]
	CallStack []*CallSite
}

type CallSite struct {
	FuncName string
	File     string
	Line     int64
}

var trackLocation = false

// EnableLocationTracking records the call site of every error that is
// created. It is intended for tests and debugging.
func EnableLocationTracking() {
	trackLocation = true
}
