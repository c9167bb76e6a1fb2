package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"runtime/metrics"
	"sort"
	"time"
)

type benchReport struct {
	Version  string       `json:"version"`
	Run      runInfo      `json:"run"`
	Workload workloadInfo `json:"workload"`
	Diff     diffInfo     `json:"diff"`
	Protocol protocolInfo `json:"protocol"`
	Document documentInfo `json:"document"`
	GC       gcInfo       `json:"gc"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
}

type workloadInfo struct {
	Seed         uint64  `json:"seed"`
	Pairs        int     `json:"pairs"`
	Profile      string  `json:"profile"`
	Depth        int     `json:"depth"`
	Fanout       int     `json:"fanout"`
	MutationRate float64 `json:"mutation_rate"`
	Workers      int     `json:"workers"`
	Elements     int     `json:"elements"`
}

type diffInfo struct {
	ElapsedMS   float64        `json:"elapsed_ms"`
	PairsPerSec float64        `json:"pairs_per_sec"`
	Changed     int            `json:"changed"`
	Unchanged   int            `json:"unchanged"`
	CostTotal   uint64         `json:"cost_total"`
	CostMax     uint64         `json:"cost_max"`
	ChangesByOp map[string]int `json:"changes_by_op"`
	Verified    int            `json:"verified"`
}

type protocolInfo struct {
	FramesTotal     int     `json:"frames_total"`
	FrameBytesTotal uint64  `json:"frame_bytes_total"`
	AvgFrameBytes   float64 `json:"avg_frame_bytes"`
	AvgBytesPerCost float64 `json:"avg_bytes_per_change"`
}

type documentInfo struct {
	Updates     int         `json:"updates"`
	Seq         uint64      `json:"seq"`
	Checkpoints int         `json:"checkpoints"`
	LatencyMS   latencyInfo `json:"update_latency_ms"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type gcInfo struct {
	AllocMB       float64 `json:"alloc_mb"`
	NumGC         uint32  `json:"num_gc"`
	PauseTotalMS  float64 `json:"pause_total_ms"`
	GCCPUFraction float64 `json:"gc_cpu_fraction"`
	AllocsObjects uint64  `json:"allocs_objects"`
}

type runtimeMetricsSnapshot struct {
	cpuTotalSeconds float64
	cpuGCSeconds    float64

	heapAllocsObjects uint64
}

func readRuntimeMetrics() runtimeMetricsSnapshot {
	samples := []metrics.Sample{
		{Name: "/cpu/classes/total:cpu-seconds"},
		{Name: "/cpu/classes/gc/total:cpu-seconds"},
		{Name: "/gc/heap/allocs:objects"},
	}
	metrics.Read(samples)

	var out runtimeMetricsSnapshot
	for _, s := range samples {
		if s.Value.Kind() == metrics.KindBad {
			continue
		}
		switch s.Name {
		case "/cpu/classes/total:cpu-seconds":
			out.cpuTotalSeconds = s.Value.Float64()
		case "/cpu/classes/gc/total:cpu-seconds":
			out.cpuGCSeconds = s.Value.Float64()
		case "/gc/heap/allocs:objects":
			out.heapAllocsObjects = s.Value.Uint64()
		}
	}
	return out
}

func cpuFraction(after, before runtimeMetricsSnapshot) float64 {
	total := after.cpuTotalSeconds - before.cpuTotalSeconds
	if total <= 0 {
		return 0
	}
	gc := after.cpuGCSeconds - before.cpuGCSeconds
	if gc < 0 {
		return 0
	}
	return gc / total
}

// runtimeSample pairs the MemStats and runtime/metrics readings taken at
// one point of a run.
type runtimeSample struct {
	mem     runtime.MemStats
	metrics runtimeMetricsSnapshot
}

func sampleRuntime() runtimeSample {
	var s runtimeSample
	runtime.GC()
	runtime.ReadMemStats(&s.mem)
	s.metrics = readRuntimeMetrics()
	return s
}

func gcBetween(before, after runtimeSample) gcInfo {
	return gcInfo{
		AllocMB:       float64(after.mem.TotalAlloc-before.mem.TotalAlloc) / (1024 * 1024),
		NumGC:         after.mem.NumGC - before.mem.NumGC,
		PauseTotalMS:  ms(time.Duration(after.mem.PauseTotalNs - before.mem.PauseTotalNs)),
		GCCPUFraction: cpuFraction(after.metrics, before.metrics),
		AllocsObjects: after.metrics.heapAllocsObjects - before.metrics.heapAllocsObjects,
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

func latencies(samples []time.Duration) latencyInfo {
	if len(samples) == 0 {
		return latencyInfo{}
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return latencyInfo{
		Min: ms(sorted[0]),
		P50: ms(percentile(sorted, 0.50)),
		P95: ms(percentile(sorted, 0.95)),
		P99: ms(percentile(sorted, 0.99)),
		Max: ms(sorted[len(sorted)-1]),
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func perSecond(n int, elapsed time.Duration) float64 {
	return float64(n) / math.Max(0.001, elapsed.Seconds())
}

func writeSummary(w io.Writer, r *benchReport) {
	fmt.Fprintln(w, "=== vtree bench ===")
	fmt.Fprintf(w, "Seed: %d  Profile: %s  Depth: %d  Fanout: %d\n",
		r.Workload.Seed, r.Workload.Profile, r.Workload.Depth, r.Workload.Fanout)
	fmt.Fprintf(w, "Pairs: %d  Elements: %d  Mutation rate: %.2f  Workers: %d\n",
		r.Workload.Pairs, r.Workload.Elements, r.Workload.MutationRate, r.Workload.Workers)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Diff: %.2f ms (%.0f pairs/s)\n", r.Diff.ElapsedMS, r.Diff.PairsPerSec)
	fmt.Fprintf(w, "  changed: %d  unchanged: %d  verified: %d\n", r.Diff.Changed, r.Diff.Unchanged, r.Diff.Verified)
	fmt.Fprintf(w, "  cost: %d total, %d max\n", r.Diff.CostTotal, r.Diff.CostMax)
	ops := make([]string, 0, len(r.Diff.ChangesByOp))
	for op := range r.Diff.ChangesByOp {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		fmt.Fprintf(w, "  %-18s %d\n", op+":", r.Diff.ChangesByOp[op])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Protocol:")
	fmt.Fprintf(w, "  frames: %d  bytes: %d\n", r.Protocol.FramesTotal, r.Protocol.FrameBytesTotal)
	fmt.Fprintf(w, "  avg frame: %.1f bytes  per change: %.1f bytes\n", r.Protocol.AvgFrameBytes, r.Protocol.AvgBytesPerCost)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Document: %d updates, seq %d, %d checkpoints verified\n",
		r.Document.Updates, r.Document.Seq, r.Document.Checkpoints)
	if r.Document.LatencyMS.Max > 0 {
		l := r.Document.LatencyMS
		fmt.Fprintf(w, "  update latency: min %.3f  p50 %.3f  p95 %.3f  p99 %.3f  max %.3f ms\n",
			l.Min, l.P50, l.P95, l.P99, l.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC:")
	fmt.Fprintf(w, "  alloc:     %.2f MB (%d objects)\n", r.GC.AllocMB, r.GC.AllocsObjects)
	fmt.Fprintf(w, "  gc cycles: %d  pause: %.2f ms  cpu: %.1f%%\n", r.GC.NumGC, r.GC.PauseTotalMS, r.GC.GCCPUFraction*100)
}

func writeJSON(path string, stdout io.Writer, r *benchReport) error {
	out := stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
