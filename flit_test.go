package pebb

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewHeaderFlit(t *testing.T) {

	// testcase describes a test case for [NewHeaderFlit]
	type testcase struct {
		// name is the name of this test case
		name string

		// toAddr is the destination address
		toAddr uint8

		// fromAddr is the source address
		fromAddr uint8

		// length is the packet length
		length uint8

		// expect is the expected raw flit
		expect Flit
	}

	var testcases = []testcase{{
		name:     "with all fields zero",
		toAddr:   0,
		fromAddr: 0,
		length:   0,
		expect:   0,
	}, {
		name:     "with the values of the routing testbench",
		toAddr:   23,
		fromAddr: 5,
		length:   3,
		expect:   0x030517,
	}, {
		name:     "with all fields at their maximum",
		toAddr:   255,
		fromAddr: 255,
		length:   255,
		expect:   0xffffff,
	}}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			flit := NewHeaderFlit(tc.toAddr, tc.fromAddr, tc.length)
			if flit != tc.expect {
				t.Fatal("expected", tc.expect, "got", flit)
			}
			if flit.ToAddr() != tc.toAddr {
				t.Fatal("invalid ToAddr")
			}
			if flit.FromAddr() != tc.fromAddr {
				t.Fatal("invalid FromAddr")
			}
			if flit.PacketLength() != tc.length {
				t.Fatal("invalid PacketLength")
			}
		})
	}
}

func TestDissectHeader(t *testing.T) {
	header := DissectHeader(NewHeaderFlit(78, 34, 7))
	expect := &Header{
		Raw:          NewHeaderFlit(78, 34, 7),
		ToAddr:       78,
		FromAddr:     34,
		PacketLength: 7,
	}
	if diff := cmp.Diff(expect, header); diff != "" {
		t.Fatal(diff)
	}
}

func TestFlitSerialization(t *testing.T) {
	flit := NewHeaderFlit(23, 5, 3) | Flit(0xdeadbeef)<<24
	data := flit.AppendBytes(nil)
	if len(data) != FlitSize {
		t.Fatal("expected", FlitSize, "bytes, got", len(data))
	}
	// the header bytes must come first in the little-endian layout
	if data[0] != 23 || data[1] != 5 || data[2] != 3 {
		t.Fatal("invalid header byte layout", data)
	}
	if FlitFromBytes(data) != flit {
		t.Fatal("round trip failed")
	}
}

func TestHeaderReservedBytesArePreserved(t *testing.T) {
	const reserved = Flit(0x1122334455) << 24
	flit := NewHeaderFlit(9, 8, 2) | reserved
	if flit.ToAddr() != 9 || flit.FromAddr() != 8 || flit.PacketLength() != 2 {
		t.Fatal("reserved bytes leaked into the decoded fields")
	}
	if flit&^Flit(0xffffff) != reserved {
		t.Fatal("reserved bytes were not preserved")
	}
}
