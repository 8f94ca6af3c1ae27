// Package scenario generates synthetic NoC traffic for commands.
package scenario

import (
	"math/rand"

	pebb "github.com/HeRCLab/pebb-routing"
)

// Config contains config for generating traffic. Make sure you
// initialize all the fields marked as MANDATORY.
type Config struct {
	// NumPackets is the MANDATORY number of packets to generate.
	NumPackets int

	// MinLength is the MANDATORY minimum packet length in flits,
	// header included. Must be at least one.
	MinLength uint8

	// MaxLength is the MANDATORY maximum packet length in flits,
	// header included. Must not be lower than MinLength.
	MaxLength uint8

	// NumNodes is the MANDATORY number of NoC nodes; generated
	// addresses are uniform in [0, NumNodes).
	NumNodes uint8

	// RNG is the MANDATORY random number generator.
	RNG *rand.Rand
}

// Generate creates random whole packets according to the config.
func Generate(config *Config) []*pebb.Packet {
	packets := []*pebb.Packet{}
	for idx := 0; idx < config.NumPackets; idx++ {
		span := int(config.MaxLength) - int(config.MinLength) + 1
		length := config.MinLength + uint8(config.RNG.Intn(span))
		toAddr := uint8(config.RNG.Intn(int(config.NumNodes)))
		fromAddr := uint8(config.RNG.Intn(int(config.NumNodes)))
		flits := []pebb.Flit{pebb.NewHeaderFlit(toAddr, fromAddr, length)}
		for count := uint8(1); count < length; count++ {
			flits = append(flits, pebb.Flit(config.RNG.Uint64()))
		}
		packets = append(packets, pebb.NewPacket(flits...))
	}
	return packets
}

// Flatten serializes whole packets into the ingress flit stream.
func Flatten(packets []*pebb.Packet) []pebb.Flit {
	flits := []pebb.Flit{}
	for _, packet := range packets {
		flits = append(flits, packet.Flits...)
	}
	return flits
}
