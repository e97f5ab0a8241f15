// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package netaddr_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/commitverify/pkg/commit"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
	. "gitlab.com/accumulatenetwork/commitverify/pkg/types/netaddr"
)

func TestRawLayout(t *testing.T) {
	u, err := ParseAddrPort("tcp://10.1.2.3:26656")
	require.NoError(t, err)

	raw := u.Raw()
	require.Len(t, raw, UniformLen)
	require.Equal(t, byte(IPv4), raw[0])
	require.Equal(t, make([]byte, 29), raw[1:30])
	require.Equal(t, []byte{10, 1, 2, 3}, raw[30:34])
	require.Equal(t, []byte{0x68, 0x20}, raw[34:36])
	require.Equal(t, byte(TCP), raw[36])
	require.Equal(t, "tcp://10.1.2.3:26656", u.String())
}

func TestIPv6(t *testing.T) {
	ip := netip.MustParseAddr("2001:db8::1")
	u := FromAddr(ip)
	require.Equal(t, IPv6, u.Format)
	require.Nil(t, u.Port)

	raw := u.Raw()
	require.Equal(t, make([]byte, 17), raw[1:18])
	b := ip.As16()
	require.Equal(t, b[:], raw[18:34])
	require.Equal(t, []byte{0, 0, 0}, raw[34:])

	v, err := u.IPAddr()
	require.NoError(t, err)
	require.Equal(t, ip, v)
}

func TestAddrFieldAndIPAddr(t *testing.T) {
	u := FromAddr(netip.MustParseAddr("10.0.0.1"))
	require.Equal(t, []byte{10, 0, 0, 1}, u.Addr[AddrLen-4:])
	ip, err := u.IPAddr()
	require.NoError(t, err)
	require.Equal(t, netip.MustParseAddr("10.0.0.1"), ip)
}

func TestMappedStaysIPv6(t *testing.T) {
	u := FromAddr(netip.MustParseAddr("::ffff:1.2.3.4"))
	require.Equal(t, IPv6, u.Format)
}

func TestFromRaw(t *testing.T) {
	u, err := ParseAddrPort("udp://[::1]:80")
	require.NoError(t, err)
	v, err := FromRaw(u.Raw())
	require.NoError(t, err)
	require.True(t, u.Equal(v))
	require.Equal(t, uint16(80), *v.Port)
	require.Equal(t, UDP, v.Transport)

	raw := u.Raw()
	raw[0] = 5
	_, err = FromRaw(raw)
	require.ErrorIs(t, err, errors.BadTag)

	raw = u.Raw()
	raw[UniformLen-1] = 5
	_, err = FromRaw(raw)
	require.ErrorIs(t, err, errors.BadTag)

	raw = u.Raw()
	raw[1] = 1
	_, err = FromRaw(raw)
	require.ErrorIs(t, err, errors.DataIntegrity)

	// Lightning keys occupy the whole field
	raw[0] = byte(Lightning)
	v, err = FromRaw(raw)
	require.NoError(t, err)
	require.Len(t, v.Bytes(), AddrLen)
}

func TestStrictAndLossy(t *testing.T) {
	bare := FromAddr(netip.MustParseAddr("1.2.3.4"))
	_, err := bare.IPAddr()
	require.NoError(t, err)
	_, err = bare.AddrPort()
	require.ErrorIs(t, err, errors.BadRequest)

	withPort := FromAddrPort(netip.MustParseAddrPort("1.2.3.4:80"), NoTransport)
	_, err = withPort.IPAddr()
	require.ErrorIs(t, err, errors.BadRequest)
	ip, err := withPort.IPAddrLossy()
	require.NoError(t, err)
	require.Equal(t, netip.MustParseAddr("1.2.3.4"), ip)
	ap, err := withPort.AddrPort()
	require.NoError(t, err)
	require.Equal(t, netip.MustParseAddrPort("1.2.3.4:80"), ap)

	withTransport := FromAddrPort(netip.MustParseAddrPort("1.2.3.4:80"), QUIC)
	_, err = withTransport.AddrPort()
	require.ErrorIs(t, err, errors.BadRequest)
	ap, err = withTransport.AddrPortLossy()
	require.NoError(t, err)
	require.Equal(t, uint16(80), ap.Port())

	onion := &UniformAddr{Format: OnionV3}
	_, err = onion.IPAddrLossy()
	require.ErrorIs(t, err, errors.BadRequest)
}

func TestEncoding(t *testing.T) {
	u, err := ParseAddrPort("mtcp://192.168.0.1:9735")
	require.NoError(t, err)

	b, err := encoding.Marshal(u)
	require.NoError(t, err)
	raw := u.Raw()
	require.Equal(t, raw[:], b)

	v := new(UniformAddr)
	require.NoError(t, encoding.Unmarshal(b, v))
	require.True(t, u.Equal(v))

	b[0] = 0xFF
	require.ErrorIs(t, encoding.Unmarshal(b, v), errors.BadTag)

	c, err := commit.Serialize(u)
	require.NoError(t, err)
	require.Equal(t, raw[:], c)
}

func TestParseAddrPort(t *testing.T) {
	u, err := ParseAddrPort("127.0.0.1:1")
	require.NoError(t, err)
	require.Equal(t, NoTransport, u.Transport)

	_, err = ParseAddrPort("tcp://localhost")
	require.ErrorIs(t, err, errors.BadRequest)
}
