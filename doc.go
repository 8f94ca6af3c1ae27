// Package pebb implements the ingress packet buffer of a network-on-chip
// router along with the machinery to simulate it.
//
// The heart of the package is the [PacketBuffer], a cycle-accurate model
// of a synchronous buffering stage. It accepts one [Flit] per tick on its
// ingress side, recognizes packet boundaries by decoding each packet's
// header flit, and holds whole packets until a controller decides, per
// packet and in arrival order, whether to stream the packet downstream
// or drop it. You drive a [PacketBuffer] by calling [PacketBuffer.Tick]
// with the sampled input signals and reading back the output signals.
//
// Because driving the buffer signal by signal is tedious, the package
// also provides the [PacketStage], an event-driven wrapper that clocks a
// [PacketBuffer] against a [FlitSource], consults an [Arbiter] whenever
// the buffer exposes a head packet, and delivers streamed packets to a
// [PacketSink]. Use [NewPacketStage] to create one; it spawns a
// background goroutine that you stop with [PacketStage.Close].
//
// The [ArbiterEngine] plays the role of the downstream route-compute
// unit: it evaluates a list of [ArbiterRule] against each head packet's
// decoded [Header] and produces a [Decision]. Rules such as
// [DropTrafficForDestination] or [DropTrafficLongerThan] express routing
// policy; the [ScriptedArbiter] replays a fixed decision sequence.
//
// Stages chain through [StagePort] instances, which buffer whole packets
// on one side and replay them flit by flit on the other. The [Pipeline]
// helper wires several stages back to back and closes them together.
//
// For observability there is the [PCAPDumper], which records every
// packet that reaches a sink into a PCAP file, and [StageStats], which
// accumulates per-packet latency and buffer occupancy samples that
// [StageStats.Summary] condenses into aggregates.
package pebb
