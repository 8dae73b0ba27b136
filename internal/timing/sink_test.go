package timing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoprof/internal/progress"
)

type recordingReporter struct {
	mu      sync.Mutex
	updates []progress.Update
}

func (r *recordingReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}
func (r *recordingReporter) Log(progress.Log)       {}
func (r *recordingReporter) Result(progress.Result) {}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		label   string
		want    Event
		wantOk  bool
	}{
		{name: "enter", percent: -1, label: "Meshing", want: EnterEvent("Meshing"), wantOk: true},
		{name: "exit ignores label", percent: 101, label: "junk", want: ExitEvent(), wantOk: true},
		{name: "zero", percent: 0, want: ProgressEvent(0), wantOk: true},
		{name: "hundred", percent: 100, want: ProgressEvent(100), wantOk: true},
		{name: "below range", percent: -2, wantOk: false},
		{name: "above range", percent: 102, wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.percent, tt.label)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEvent_EncodeRoundTrip(t *testing.T) {
	for _, ev := range []Event{EnterEvent("a"), ExitEvent(), ProgressEvent(42)} {
		p, l := ev.Encode()
		got, ok := Decode(p, l)
		require.True(t, ok, ev.String())
		assert.Equal(t, ev, got)
	}
}

func TestSink_DrivesClock(t *testing.T) {
	log := &recordingLogger{}
	clock := NewClock(log)
	s := NewSink(clock)

	s.Report(-1, "Creating shapes")
	s.Report(10, "")
	s.Report(10, "")
	s.Report(-1, "Meshing")
	s.Report(101, "")
	s.Report(101, "")

	assert.Equal(t, 0, clock.Depth())
	recs := clock.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "Meshing", recs[0].Name)
	assert.Equal(t, "Creating shapes", recs[1].Name)
	assert.Equal(t, 1, log.count("10% in"))
}

func TestSink_RejectsOutOfRangeValues(t *testing.T) {
	clock := NewClock(&recordingLogger{})
	s := NewSink(clock)
	s.Report(250, "")
	assert.Len(t, clock.Violations(), 1)
	assert.Empty(t, clock.Records())
}

func TestSink_ForwardsToReporter(t *testing.T) {
	rep := &recordingReporter{}
	s := NewSink(NewClock(&recordingLogger{}), WithReporter(rep, "job-1", "a.ifc"))

	s.Report(-1, "Meshing")
	s.Report(40, "")
	s.Report(101, "")

	require.Len(t, rep.updates, 3)
	assert.Equal(t, "Meshing", rep.updates[0].Stage)
	assert.Equal(t, float64(-1), rep.updates[0].Percent)
	assert.Equal(t, float64(40), rep.updates[1].Percent)
	assert.Equal(t, "job-1", rep.updates[1].JobID)
	assert.Equal(t, progress.PhaseBuilding, rep.updates[2].Phase)
	assert.Equal(t, "", rep.updates[2].Stage)
}
