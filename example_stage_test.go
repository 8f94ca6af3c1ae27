package pebb_test

import (
	"fmt"

	pebb "github.com/HeRCLab/pebb-routing"
)

// This scenario shows a stage streaming the packets addressed to most
// nodes while a rule drops the traffic directed to node 9.
func Example_streamAndDrop() {
	// create the arbiter playing the role of the route-compute unit
	arbiter := pebb.NewArbiterEngine(
		&pebb.NullLogger{},
		&pebb.DropTrafficForDestination{
			Logger: &pebb.NullLogger{},
			ToAddr: 9,
		},
	)

	// prepare two whole packets: the first one is dropped
	dropped := pebb.NewPacket(pebb.NewHeaderFlit(9, 1, 2), 0xdead)
	streamed := pebb.NewPacket(pebb.NewHeaderFlit(4, 1, 3), 0xbeef, 0xcafe)
	var flits []pebb.Flit
	flits = append(flits, dropped.Flits...)
	flits = append(flits, streamed.Flits...)

	// create the stage and wait for the surviving packet
	sink := pebb.NewCollectorSink()
	stage := pebb.NewPacketStage(&pebb.StageConfig{
		Arbiter: arbiter,
		Logger:  &pebb.NullLogger{},
		Sink:    sink,
		Source:  pebb.NewStaticFlitSource(flits...),
	})
	defer stage.Close()

	packet := <-sink.Packets()
	fmt.Printf(
		"to=%d from=%d length=%d\n",
		packet.Header.ToAddr,
		packet.Header.FromAddr,
		packet.Header.PacketLength,
	)
	// Output: to=4 from=1 length=3
}

// This scenario shows how to drive the packet buffer cycle by cycle
// the way the surrounding router logic would.
func Example_cycleAccurate() {
	buffer := pebb.NewPacketBuffer(nil)

	// clock in a header-only packet
	out := buffer.Tick(&pebb.BufferInputs{
		InFlit:      pebb.NewHeaderFlit(23, 5, 1),
		InFlitValid: true,
	})
	fmt.Printf("ready=%v to=%d from=%d length=%d\n",
		out.PacketReady, out.ToAddr, out.FromAddr, out.PacketLength)

	// issue the stream command; the flit appears on the next edge
	out = buffer.Tick(&pebb.BufferInputs{ControlValid: true, Stream: true})
	fmt.Printf("valid=%v\n", out.OutFlitValid)
	out = buffer.Tick(&pebb.BufferInputs{})
	fmt.Printf("valid=%v flits=%d packets=%d\n",
		out.OutFlitValid, out.NFlits, out.NPackets)

	// Output:
	// ready=true to=23 from=5 length=1
	// valid=false
	// valid=true flits=0 packets=0
}
