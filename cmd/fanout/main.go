package main

import (
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/mingshuisheng/reactivity"
)

// Fan-out/fan-in stress: one source feeding many effects, many sources
// feeding one effect, and a pool of goroutines hammering Value the whole
// time to keep the shared locks honest.
func main() {
	log.Print("Starting fanout stress, please wait...")
	defer log.Print("Finished fanout stress")

	cfgs := []stressConfig{
		{name: "fan-out small", sources: 1, effects: 10, readers: 4, iterations: 50_000},
		{name: "fan-out wide", sources: 1, effects: 1_000, readers: 4, iterations: 1_000},
		{name: "fan-in small", sources: 10, effects: 1, readers: 4, iterations: 50_000},
		{name: "fan-in wide", sources: 1_000, effects: 1, readers: 4, iterations: 1_000},
		{name: "mesh", sources: 100, effects: 100, readers: 8, iterations: 500},
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"test", "sources", "effects", "nTimes", "runs", "reads", "time", "runRate",
	})

	for _, cfg := range cfgs {
		log.Printf("Running '%s' config", cfg.name)
		res := runStress(cfg)

		runRate := float64(res.effectRuns) / (float64(res.duration) / float64(time.Millisecond))
		table.Append([]string{
			cfg.name,
			humanize.Comma(int64(cfg.sources)),
			humanize.Comma(int64(cfg.effects)),
			humanize.Comma(int64(cfg.iterations)),
			humanize.Comma(res.effectRuns),
			humanize.Comma(res.reads),
			fmt.Sprint(res.duration),
			humanize.Comma(int64(runRate)),
		})
	}
	table.Render()
}

type stressConfig struct {
	name       string // friendly name, should be unique
	sources    int    // cells every effect reads
	effects    int    // effects subscribed to every cell
	readers    int    // goroutines reading concurrently with the updates
	iterations int    // updates spread round-robin over the sources
}

type stressResult struct {
	effectRuns int64
	reads      int64
	duration   time.Duration
}

func runStress(cfg stressConfig) stressResult {
	sc := reactivity.NewScope()

	sources := make([]*reactivity.Cell[int], cfg.sources)
	for i := range sources {
		sources[i] = reactivity.Reactive(sc, 0)
	}

	var runs atomic.Int64
	for i := 0; i < cfg.effects; i++ {
		reactivity.Effect(sc, func() {
			total := 0
			for _, src := range sources {
				total += src.Value()
			}
			_ = total
			runs.Add(1)
		})
	}

	stop := make(chan struct{})
	var reads atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < cfg.readers; i++ {
		wg.Add(1)
		go func(src *reactivity.Cell[int]) {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					src.Value()
					reads.Add(1)
				}
			}
		}(sources[i%len(sources)])
	}

	start := time.Now()
	for i := 0; i < cfg.iterations; i++ {
		sources[i%len(sources)].Update(func(x int) int { return x + 1 })
	}
	duration := time.Since(start)

	close(stop)
	wg.Wait()

	return stressResult{
		effectRuns: runs.Load(),
		reads:      reads.Load(),
		duration:   duration,
	}
}
