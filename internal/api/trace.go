package api

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/gesturelock/internal/gesture"
	"github.com/banshee-data/gesturelock/internal/lock"
)

// Trace is the motion captured for one unlock attempt.
type Trace struct {
	Attempt    int              `json:"attempt"`
	StartedAt  time.Time        `json:"started_at"`
	Samples    []gesture.Sample `json:"samples"`
	Similarity float64          `json:"similarity"`
	Complete   bool             `json:"complete"`
}

// TraceRecorder is a lock.Sink that keeps the candidate of the most recent
// unlock attempt. Enrollment captures are ignored so the stored gesture is
// never exposed.
type TraceRecorder struct {
	mu      sync.Mutex
	current *Trace
	last    *Trace
}

// Emit implements lock.Sink.
func (t *TraceRecorder) Emit(e lock.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Kind {
	case lock.EventCheckingStarted:
		t.current = &Trace{Attempt: e.Attempt, StartedAt: e.Time}
	case lock.EventSampleProgress:
		if e.Checking && t.current != nil {
			t.current.Samples = append(t.current.Samples, e.Sample)
		}
	case lock.EventCheckResult:
		if t.current != nil {
			t.current.Similarity = e.Similarity
			t.current.Complete = true
			t.last = t.current
			t.current = nil
		}
	case lock.EventRecordingStarted:
		t.current = nil
	}
}

// Last returns a copy of the most recent completed attempt.
func (t *TraceRecorder) Last() (Trace, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return Trace{}, false
	}
	out := *t.last
	out.Samples = append([]gesture.Sample(nil), t.last.Samples...)
	return out, true
}

// RenderChart writes an HTML line chart of tr's three axes.
func RenderChart(w io.Writer, tr Trace) error {
	xs := make([]int, len(tr.Samples))
	ax := make([]opts.LineData, len(tr.Samples))
	ay := make([]opts.LineData, len(tr.Samples))
	az := make([]opts.LineData, len(tr.Samples))
	for i, s := range tr.Samples {
		xs[i] = i
		ax[i] = opts.LineData{Value: s.AX}
		ay[i] = opts.LineData{Value: s.AY}
		az[i] = opts.LineData{Value: s.AZ}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Unlock attempt", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Attempt %d", tr.Attempt),
			Subtitle: fmt.Sprintf("%s samples=%d match=%.1f%%", tr.StartedAt.Format(time.RFC3339), len(tr.Samples), tr.Similarity*100),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sample", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "accel", NameLocation: "middle", NameGap: 30}),
	)
	line.SetXAxis(xs).
		AddSeries("x", ax).
		AddSeries("y", ay).
		AddSeries("z", az)

	return line.Render(w)
}
