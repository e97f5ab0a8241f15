// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package netaddr implements the uniform encoding of network addresses: a
// fixed 37-byte form that holds an IP address, an onion service key or a
// lightning node key together with an optional port and transport.
package netaddr

import (
	"encoding/binary"
	"encoding/hex"
	"net/netip"
	"strconv"

	"gitlab.com/accumulatenetwork/commitverify/pkg/commit"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
)

const (
	// AddrLen is the size of the address field, the size of the largest
	// public key an address may carry.
	AddrLen = 33

	// UniformLen is the size of an encoded address: format, address, port
	// and transport.
	UniformLen = 1 + AddrLen + 2 + 1
)

// Format is the kind of address.
type Format uint8

const (
	IPv4 Format = iota
	IPv6
	OnionV2
	OnionV3
	Lightning
)

// width is the number of significant trailing bytes of the address field.
func (f Format) width() (int, bool) {
	switch f {
	case IPv4:
		return 4, true
	case IPv6:
		return 16, true
	case OnionV2:
		return 10, true
	case OnionV3:
		return 32, true
	case Lightning:
		return 33, true
	}
	return 0, false
}

func (f Format) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	case OnionV2:
		return "onion(v2)"
	case OnionV3:
		return "onion(v3)"
	case Lightning:
		return "lightning"
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

// Transport is the transport-level protocol. The zero value means
// unspecified.
type Transport uint8

const (
	NoTransport Transport = iota
	TCP
	UDP
	MTCP
	QUIC
)

func (t Transport) valid() bool { return t <= QUIC }

func (t Transport) String() string {
	switch t {
	case NoTransport:
		return "none"
	case TCP:
		return "tcp"
	case UDP:
		return "udp"
	case MTCP:
		return "mtcp"
	case QUIC:
		return "quic"
	}
	return "transport(" + strconv.Itoa(int(t)) + ")"
}

// UniformAddr is a network address in uniform form. The address bytes are
// right-aligned within Addr and every leading byte the format does not use is
// zero. A nil Port means no port.
type UniformAddr struct {
	Format    Format
	Addr      [AddrLen]byte
	Port      *uint16
	Transport Transport
}

// Raw returns the 37-byte form of the address.
func (u *UniformAddr) Raw() [UniformLen]byte {
	var raw [UniformLen]byte
	raw[0] = byte(u.Format)
	copy(raw[1:], u.Addr[:])
	if u.Port != nil {
		binary.BigEndian.PutUint16(raw[1+AddrLen:], *u.Port)
	}
	raw[UniformLen-1] = byte(u.Transport)
	return raw
}

// FromRaw decodes the 37-byte form of an address. It fails with
// [errors.BadTag] for an unknown format or transport and with
// [errors.DataIntegrity] if the padding of the address is not zero.
func FromRaw(raw [UniformLen]byte) (*UniformAddr, error) {
	u := new(UniformAddr)
	u.Format = Format(raw[0])
	n, ok := u.Format.width()
	if !ok {
		return nil, errors.BadTag.WithFormat("unknown address format %d", raw[0])
	}
	copy(u.Addr[:], raw[1:1+AddrLen])
	for i, b := range u.Addr[:AddrLen-n] {
		if b != 0 {
			return nil, errors.DataIntegrity.WithFormat("%v address has a non-zero padding byte at %d", u.Format, i)
		}
	}
	if port := binary.BigEndian.Uint16(raw[1+AddrLen:]); port != 0 {
		u.Port = &port
	}
	u.Transport = Transport(raw[UniformLen-1])
	if !u.Transport.valid() {
		return nil, errors.BadTag.WithFormat("unknown transport %d", raw[UniformLen-1])
	}
	return u, nil
}

// Bytes returns the significant bytes of the address.
func (u *UniformAddr) Bytes() []byte {
	n, ok := u.Format.width()
	if !ok {
		return nil
	}
	return u.Addr[AddrLen-n:]
}

func (u *UniformAddr) String() string {
	var s string
	switch u.Format {
	case IPv4, IPv6:
		ip, _ := u.lossyAddr()
		s = ip.String()
		if u.Port != nil {
			s = netip.AddrPortFrom(ip, *u.Port).String()
		}
	default:
		s = u.Format.String() + ":" + hex.EncodeToString(u.Bytes())
		if u.Port != nil {
			s += ":" + strconv.Itoa(int(*u.Port))
		}
	}
	if u.Transport != NoTransport {
		s = u.Transport.String() + "://" + s
	}
	return s
}

func (u UniformAddr) MarshalConfined(w *encoding.Writer) {
	raw := u.Raw()
	w.WriteRaw(raw[:])
}

func (u *UniformAddr) UnmarshalConfined(r *encoding.Reader) {
	var raw [UniformLen]byte
	r.ReadInto(raw[:])
	if r.Err() != nil {
		return
	}
	v, err := FromRaw(raw)
	if err != nil {
		r.Fail(err)
		return
	}
	*u = *v
}

func (u *UniformAddr) CommitStrategy() commit.Strategy {
	return commit.Strict(u)
}

// FromAddr returns the uniform form of an IP address. An IPv4-mapped IPv6
// address stays IPv6. The zone is dropped.
func FromAddr(ip netip.Addr) *UniformAddr {
	u := new(UniformAddr)
	if ip.Is4() {
		u.Format = IPv4
		b := ip.As4()
		copy(u.Addr[AddrLen-4:], b[:])
	} else {
		u.Format = IPv6
		b := ip.As16()
		copy(u.Addr[AddrLen-16:], b[:])
	}
	return u
}

// FromAddrPort returns the uniform form of an IP address and port.
func FromAddrPort(ap netip.AddrPort, transport Transport) *UniformAddr {
	u := FromAddr(ap.Addr())
	port := ap.Port()
	if port != 0 {
		u.Port = &port
	}
	u.Transport = transport
	return u
}

// ParseAddrPort parses "[transport://]ip:port", for example
// "tcp://127.0.0.1:26656".
func ParseAddrPort(s string) (*UniformAddr, error) {
	transport := NoTransport
	for t := TCP; t <= QUIC; t++ {
		prefix := t.String() + "://"
		if len(s) > len(prefix) && s[:len(prefix)] == prefix {
			transport, s = t, s[len(prefix):]
			break
		}
	}
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return nil, errors.BadRequest.WithFormat("parse address: %w", err)
	}
	return FromAddrPort(ap, transport), nil
}

func (u *UniformAddr) lossyAddr() (netip.Addr, error) {
	switch u.Format {
	case IPv4:
		return netip.AddrFrom4([4]byte(u.Addr[AddrLen-4:])), nil
	case IPv6:
		return netip.AddrFrom16([16]byte(u.Addr[AddrLen-16:])), nil
	}
	return netip.Addr{}, errors.BadRequest.WithFormat("%v is not an IP address format", u.Format)
}

// IPAddr returns the IP address. It fails if the address has a port or a
// transport, since those would be lost.
func (u *UniformAddr) IPAddr() (netip.Addr, error) {
	if u.Port != nil || u.Transport != NoTransport {
		return netip.Addr{}, errors.BadRequest.With("address has a port or transport")
	}
	return u.lossyAddr()
}

// IPAddrLossy returns the IP address and discards the port and transport.
func (u *UniformAddr) IPAddrLossy() (netip.Addr, error) {
	return u.lossyAddr()
}

// AddrPort returns the IP address and port. It fails if the address has no
// port or has a transport.
func (u *UniformAddr) AddrPort() (netip.AddrPort, error) {
	if u.Transport != NoTransport {
		return netip.AddrPort{}, errors.BadRequest.WithFormat("address has transport %v", u.Transport)
	}
	return u.AddrPortLossy()
}

// AddrPortLossy returns the IP address and port and discards the transport.
// It fails if the address has no port.
func (u *UniformAddr) AddrPortLossy() (netip.AddrPort, error) {
	ip, err := u.lossyAddr()
	if err != nil {
		return netip.AddrPort{}, err
	}
	if u.Port == nil {
		return netip.AddrPort{}, errors.BadRequest.With("address has no port")
	}
	return netip.AddrPortFrom(ip, *u.Port), nil
}

// Equal reports whether two addresses have the same uniform form.
func (u *UniformAddr) Equal(v *UniformAddr) bool {
	return u.Raw() == v.Raw()
}
