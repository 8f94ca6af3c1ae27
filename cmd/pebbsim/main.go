// Command pebbsim drives a [pebb.PacketStage] with synthetic traffic
// and prints statistics about what the stage streamed and dropped.
package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	pebb "github.com/HeRCLab/pebb-routing"
	"github.com/HeRCLab/pebb-routing/cmd/internal/scenario"
)

func main() {
	app := cli.NewApp()
	app.Name = "pebbsim"
	app.Usage = "simulate the ingress packet buffer of a NoC router"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "packets, n",
			Value: 20,
			Usage: "number of packets to generate",
		},
		cli.IntFlag{
			Name:  "min-length",
			Value: 2,
			Usage: "minimum packet length in flits, header included",
		},
		cli.IntFlag{
			Name:  "max-length",
			Value: 20,
			Usage: "maximum packet length in flits, header included",
		},
		cli.IntFlag{
			Name:  "nodes",
			Value: 16,
			Usage: "number of NoC nodes to address",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 0,
			Usage: "RNG seed; 0 seeds from the current time",
		},
		cli.IntFlag{
			Name:  "capacity",
			Value: pebb.DefaultBufferCapacity,
			Usage: "flit capacity of the buffer",
		},
		cli.IntFlag{
			Name:  "drop-to",
			Value: -1,
			Usage: "drop packets directed to this node; -1 disables the rule",
		},
		cli.IntFlag{
			Name:  "drop-longer-than",
			Value: 0,
			Usage: "drop packets longer than this many flits; 0 disables the rule",
		},
		cli.StringFlag{
			Name:  "trace",
			Usage: "write a PCAP trace of the streamed packets to this file",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "emit debug logs",
		},
	}
	app.Action = simulate
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("pebbsim")
	}
}

func simulate(ctx *cli.Context) error {
	if ctx.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	minLength := ctx.Int("min-length")
	maxLength := ctx.Int("max-length")
	if minLength < 1 || maxLength > 255 || minLength > maxLength {
		return errors.Errorf("invalid packet length range [%d, %d]", minLength, maxLength)
	}
	nodes := ctx.Int("nodes")
	if nodes < 1 || nodes > 255 {
		return errors.Errorf("invalid node count %d", nodes)
	}

	seed := ctx.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Infof("pebbsim: seed %d", seed)

	packets := scenario.Generate(&scenario.Config{
		NumPackets: ctx.Int("packets"),
		MinLength:  uint8(minLength),
		MaxLength:  uint8(maxLength),
		NumNodes:   uint8(nodes),
		RNG:        rand.New(rand.NewSource(seed)),
	})

	arbiter := pebb.NewArbiterEngine(log.Log)
	if toAddr := ctx.Int("drop-to"); toAddr >= 0 {
		arbiter.AddRule(&pebb.DropTrafficForDestination{
			Logger: log.Log,
			ToAddr: uint8(toAddr),
		})
	}
	if maxStreamed := ctx.Int("drop-longer-than"); maxStreamed > 0 {
		arbiter.AddRule(&pebb.DropTrafficLongerThan{
			Logger:    log.Log,
			MaxLength: uint8(maxStreamed),
		})
	}

	var wrapper pebb.SinkWrapper
	if filename := ctx.String("trace"); filename != "" {
		wrapper = pebb.NewPCAPDumper(filename, log.Log)
	}

	stats := pebb.NewStageStats()
	sink := pebb.NewCollectorSink()
	stage := pebb.NewPacketStage(&pebb.StageConfig{
		Arbiter: arbiter,
		Buffer: &pebb.BufferConfig{
			Capacity:   ctx.Int("capacity"),
			MaxPackets: 0,
		},
		Logger:      log.Log,
		Sink:        sink,
		SinkWrapper: wrapper,
		Source:      pebb.NewStaticFlitSource(scenario.Flatten(packets)...),
		Stats:       stats,
	})
	defer stage.Close()

	if err := awaitRetirement(stats, len(packets)); err != nil {
		return err
	}
	stage.Close()

	summary, err := stats.Summary()
	if err != nil {
		return errors.Wrap(err, "stats.Summary")
	}
	log.Infof("pebbsim: ticks           %d", summary.Ticks)
	log.Infof("pebbsim: streamed        %d packets / %d flits",
		summary.StreamedPackets, summary.StreamedFlits)
	log.Infof("pebbsim: dropped         %d packets / %d flits",
		summary.DroppedPackets, summary.DroppedFlits)
	log.Infof("pebbsim: occupancy       mean %.2f / max %.0f flits",
		summary.MeanOccupancy, summary.MaxOccupancy)
	log.Infof("pebbsim: latency         mean %.2f / p95 %.2f ticks",
		summary.MeanLatency, summary.P95Latency)
	return nil
}

// awaitRetirement waits until the stage has issued a stream or drop
// command for every generated packet. The stats count a packet when its
// command is issued; closing the stage lets the last retirements finish.
func awaitRetirement(stats *pebb.StageStats, total int) error {
	const timeout = 30 * time.Second
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		summary, err := stats.Summary()
		if err != nil {
			return errors.Wrap(err, "stats.Summary")
		}
		if summary.StreamedPackets+summary.DroppedPackets >= int64(total) {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return errors.New("simulation did not retire all packets in time")
}
