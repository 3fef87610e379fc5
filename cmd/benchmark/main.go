package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/mingshuisheng/reactivity"
)

const (
	itersKey   = "iters"
	retrackKey = "retrack"
	limitKey   = "limit"
)

var (
	ww = []int{1, 10, 100}
	hh = []int{1, 10, 100}
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure update propagation latency through cell/effect graphs",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Updates to time per graph shape",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  retrackKey,
				Usage: "Re-collect effect dependencies on every run",
				Value: false,
			},
			&cli.UintFlag{
				Name:  limitKey,
				Usage: "Re-entrancy limit per effect, 0 leaves recursion unguarded",
				Value: 0,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	iters := int(cmd.Uint(itersKey))

	var opts []reactivity.ScopeOption
	if cmd.Bool(retrackKey) {
		opts = append(opts, reactivity.WithRetracking())
	}
	if limit := cmd.Uint(limitKey); limit > 0 {
		opts = append(opts, reactivity.WithReentrancyLimit(int32(limit)))
	}

	tbl := table.NewWriter()
	tbl.SetTitle("reactivity cells")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	digest := xxhash.New()
	for _, w := range ww {
		for _, h := range hh {
			calc, sum, err := propagate(opts, w, h, iters)
			if err != nil {
				return err
			}
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], sum)
			digest.Write(buf[:])

			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}
	tbl.Render()

	log.Printf("sink checksum: %016x", digest.Sum64())
	return nil
}

// propagate builds w chains of h cells fed from one source. Every link is an
// effect that derives its cell from the previous one, so one source update
// re-runs w*h effects in-line before it returns.
func propagate(opts []reactivity.ScopeOption, w, h, iters int) (*tachymeter.Metrics, uint64, error) {
	sc := reactivity.NewScope(opts...)
	src := reactivity.Reactive(sc, 1)

	sinks := make([]*reactivity.Cell[int], 0, w)
	for i := 0; i < w; i++ {
		last := src
		for j := 0; j < h; j++ {
			prev := last
			next := reactivity.Reactive(sc, 0)
			reactivity.Effect(sc, func() {
				next.Update(func(int) int { return prev.Value() + 1 })
			})
			last = next
		}
		sinks = append(sinks, last)
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		src.Update(func(x int) int { return x + 1 })
		tach.AddTime(time.Since(start))
	}

	// each chain link adds one to a source that took iters increments
	want := 1 + iters + h
	digest := xxhash.New()
	var buf [8]byte
	for _, sink := range sinks {
		got := sink.Value()
		if got != want {
			return nil, 0, fmt.Errorf("sink out of sync: got %d, want %d", got, want)
		}
		binary.BigEndian.PutUint64(buf[:], uint64(got))
		digest.Write(buf[:])
	}
	return tach.Calc(), digest.Sum64(), nil
}
