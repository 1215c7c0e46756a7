package updatable_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/comalice/updatable"
	"github.com/comalice/updatable/clock"
	"github.com/comalice/updatable/testutil"
)

func newRegistry(src clock.Source) *updatable.Registry {
	if src == nil {
		src = clock.NewManual(0)
	}
	return updatable.New(updatable.WithClock(src))
}

// TestScenarioABC covers construction order dispatch and the debug broadcast.
func TestScenarioABC(t *testing.T) {
	var log testutil.Log
	recs := testutil.NewRecorders(&log, "A", "B", "C")
	reg := newRegistry(nil)
	testutil.RegisterAll(reg, recs...)

	reg.UpdateAll(10)

	want := []testutil.Call{{Name: "A", Delta: 10}, {Name: "B", Delta: 10}, {Name: "C", Delta: 10}}
	if !reflect.DeepEqual(log.Calls(), want) {
		t.Fatalf("calls = %v, want %v", log.Calls(), want)
	}

	reg.SetDebugMode(true)
	for _, r := range recs {
		if !r.DebugMode() {
			t.Errorf("%s.DebugMode() = false after broadcast", r.Name)
		}
	}
}

func TestUpdateAllForwardsDeltaUnmodified(t *testing.T) {
	deltas := []int64{0, 1, -1, 10, math.MaxInt64, math.MinInt64, math.MaxUint32}
	for _, d := range deltas {
		rec := testutil.NewRecorder("r", nil)
		reg := newRegistry(nil)
		reg.Register(rec)

		reg.UpdateAll(d)
		if !reflect.DeepEqual(rec.Deltas, []int64{d}) {
			t.Errorf("UpdateAll(%d): got %v", d, rec.Deltas)
		}
	}
}

func TestUpdateAllEmptyRegistry(t *testing.T) {
	reg := newRegistry(nil)
	reg.UpdateAll(5)
	if reg.Passes() != 1 {
		t.Fatalf("Passes() = %d, want 1", reg.Passes())
	}
}

func TestUpdateAllDoesNotTouchClockState(t *testing.T) {
	src := clock.NewManual(100)
	reg := newRegistry(src)
	rec := testutil.NewRecorder("r", nil)
	reg.Register(rec)

	reg.UpdateAll(7)
	if _, ok := reg.Tick(); ok {
		t.Fatal("first Tick after UpdateAll dispatched; UpdateAll must not record a baseline")
	}
	if !reflect.DeepEqual(rec.Deltas, []int64{7}) {
		t.Fatalf("Deltas = %v, want [7]", rec.Deltas)
	}
}

func TestRegisterTwiceDispatchesTwice(t *testing.T) {
	var log testutil.Log
	rec := testutil.NewRecorder("dup", &log)
	reg := newRegistry(nil)
	h1 := reg.Register(rec)
	h2 := reg.Register(rec)

	if h1 == h2 {
		t.Fatal("double registration returned identical handles")
	}
	reg.UpdateAll(1)
	if rec.Calls() != 2 {
		t.Fatalf("Calls() = %d, want 2", rec.Calls())
	}
	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}
}

func TestRegisterNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	newRegistry(nil).Register(nil)
}

func TestTickFirstCallRecordsBaseline(t *testing.T) {
	src := clock.NewManual(1000)
	reg := newRegistry(src)
	rec := testutil.NewRecorder("r", nil)
	reg.Register(rec)

	if d, ok := reg.Tick(); ok || d != 0 {
		t.Fatalf("first Tick() = (%d, %v), want (0, false)", d, ok)
	}
	if rec.Calls() != 0 {
		t.Fatalf("first Tick dispatched %d calls", rec.Calls())
	}

	src.Set(1250)
	if d, ok := reg.Tick(); !ok || d != 250 {
		t.Fatalf("second Tick() = (%d, %v), want (250, true)", d, ok)
	}
	src.Set(1260)
	reg.Tick()

	if !reflect.DeepEqual(rec.Deltas, []int64{250, 10}) {
		t.Fatalf("Deltas = %v, want [250 10]", rec.Deltas)
	}
	if snap := reg.Snapshot(); !snap.Started || snap.LastTick != 1260 {
		t.Fatalf("snapshot started=%v last=%d", snap.Started, snap.LastTick)
	}
}

func TestTickWraparound(t *testing.T) {
	tests := []struct {
		name        string
		first, next uint32
		want        int64
	}{
		{"max to zero", math.MaxUint32, 0, 1},
		{"max minus four to five", math.MaxUint32 - 4, 5, 10},
		{"just before wrap", math.MaxUint32 - 100, math.MaxUint32, 100},
		{"far side of wrap", math.MaxUint32 - 1, 998, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := clock.NewManual(tt.first)
			reg := newRegistry(src)
			rec := testutil.NewRecorder("r", nil)
			reg.Register(rec)

			reg.Tick()
			src.Set(tt.next)
			reg.Tick()

			if !reflect.DeepEqual(rec.Deltas, []int64{tt.want}) {
				t.Fatalf("Deltas = %v, want [%d]", rec.Deltas, tt.want)
			}
		})
	}
}

func TestTickWraparoundEveryStep(t *testing.T) {
	src := clock.NewManual(math.MaxUint32 - 20)
	reg := newRegistry(src)
	rec := testutil.NewRecorder("r", nil)
	reg.Register(rec)

	reg.Tick()
	for i := 0; i < 40; i++ {
		src.Advance(3)
		reg.Tick()
	}
	for i, d := range rec.Deltas {
		if d != 3 {
			t.Fatalf("pass %d: delta %d, want 3", i, d)
		}
	}
}

func TestReset(t *testing.T) {
	src := clock.NewManual(0)
	reg := newRegistry(src)
	rec := testutil.NewRecorder("r", nil)
	reg.Register(rec)

	reg.Tick()
	src.Set(10)
	reg.Tick()

	reg.Reset()
	src.Set(100000)
	if _, ok := reg.Tick(); ok {
		t.Fatal("Tick after Reset dispatched")
	}
	src.Set(100005)
	reg.Tick()

	if !reflect.DeepEqual(rec.Deltas, []int64{10, 5}) {
		t.Fatalf("Deltas = %v, want [10 5]", rec.Deltas)
	}
}

func TestDebugBroadcast(t *testing.T) {
	reg := newRegistry(nil)
	early := testutil.NewRecorder("early", nil)
	reg.Register(early)

	if early.DebugMode() {
		t.Fatal("debug mode must default to false")
	}
	if reg.DebugMode() {
		t.Fatal("registry debug mode must default to false")
	}

	reg.SetDebugMode(true)
	late := testutil.NewRecorder("late", nil)
	reg.Register(late)

	if !early.DebugMode() || !late.DebugMode() {
		t.Fatalf("after broadcast(true): early=%v late=%v", early.DebugMode(), late.DebugMode())
	}

	reg.SetDebugMode(false)
	if early.DebugMode() || late.DebugMode() {
		t.Fatalf("after broadcast(false): early=%v late=%v", early.DebugMode(), late.DebugMode())
	}

	reg.UpdateAll(1)
	if late.Debug[0] {
		t.Fatal("Update observed stale debug flag")
	}
}

func TestUnregisteredParticipantKeepsDefault(t *testing.T) {
	reg := newRegistry(nil)
	outsider := testutil.NewRecorder("outsider", nil)
	reg.SetDebugMode(true)
	if outsider.DebugMode() {
		t.Fatal("broadcast reached a participant that was never registered")
	}
}

func TestDeregister(t *testing.T) {
	var log testutil.Log
	recs := testutil.NewRecorders(&log, "A", "B", "C")
	reg := newRegistry(nil)
	handles := testutil.RegisterAll(reg, recs...)

	if !reg.Deregister(handles[1]) {
		t.Fatal("Deregister(B) = false")
	}
	if reg.Contains(handles[1]) {
		t.Fatal("B still contained after Deregister")
	}
	if reg.Deregister(handles[1]) {
		t.Fatal("second Deregister(B) = true, want silent no-op")
	}

	reg.UpdateAll(2)
	if !reflect.DeepEqual(log.Names(), []string{"A", "C"}) {
		t.Fatalf("names = %v, want [A C]", log.Names())
	}
	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}
}

func TestDeregisterZeroHandle(t *testing.T) {
	reg := newRegistry(nil)
	reg.Register(testutil.NewRecorder("r", nil))
	var zero updatable.Handle
	if !zero.IsZero() {
		t.Fatal("zero handle reports non-zero")
	}
	if reg.Deregister(zero) {
		t.Fatal("Deregister(zero) = true")
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
}

func TestRemoveFirstMatchOnly(t *testing.T) {
	var log testutil.Log
	a := testutil.NewRecorder("A", &log)
	b := testutil.NewRecorder("B", &log)
	reg := newRegistry(nil)
	reg.Register(a)
	reg.Register(b)
	reg.Register(a)

	if !reg.Remove(a) {
		t.Fatal("Remove(a) = false")
	}
	reg.UpdateAll(1)
	if !reflect.DeepEqual(log.Names(), []string{"B", "A"}) {
		t.Fatalf("names = %v, want [B A]", log.Names())
	}

	reg.Remove(a)
	if reg.Remove(a) {
		t.Fatal("Remove of unregistered participant = true")
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	reg := newRegistry(nil)
	old := testutil.NewRecorder("old", nil)
	h := reg.Register(old)
	reg.Deregister(h)

	fresh := testutil.NewRecorder("fresh", nil)
	h2 := reg.Register(fresh)

	if reg.Contains(h) {
		t.Fatal("stale handle resolves after slot reuse")
	}
	if reg.Deregister(h) {
		t.Fatal("stale handle removed the new registration")
	}
	p, ok := reg.Participant(h2)
	if !ok || p != fresh {
		t.Fatalf("Participant(h2) = %v, %v", p, ok)
	}
}

func TestRemovalDuringPassIsDeferred(t *testing.T) {
	var log testutil.Log
	recs := testutil.NewRecorders(&log, "A", "B", "C", "D")
	reg := newRegistry(nil)
	handles := testutil.RegisterAll(reg, recs...)

	// B removes C (not yet visited) and itself.
	recs[1].OnUpdate = func(int64) {
		if !reg.Deregister(handles[2]) {
			t.Error("Deregister(C) mid-pass = false")
		}
		if !reg.Remove(recs[1]) {
			t.Error("Remove(B) mid-pass = false")
		}
		if reg.Contains(handles[2]) {
			t.Error("C still visible mid-pass after removal")
		}
		if reg.Len() != 2 {
			t.Errorf("Len() mid-pass = %d, want 2", reg.Len())
		}
	}

	reg.UpdateAll(1)
	if !reflect.DeepEqual(log.Names(), []string{"A", "B", "D"}) {
		t.Fatalf("first pass names = %v, want [A B D]", log.Names())
	}

	log.Reset()
	reg.UpdateAll(2)
	if !reflect.DeepEqual(log.Names(), []string{"A", "D"}) {
		t.Fatalf("second pass names = %v, want [A D]", log.Names())
	}
}

func TestSelfRemovalOfLastParticipant(t *testing.T) {
	reg := newRegistry(nil)
	var h updatable.Handle
	rec := testutil.NewRecorder("once", nil)
	rec.OnUpdate = func(int64) { reg.Deregister(h) }
	h = reg.Register(rec)

	reg.UpdateAll(1)
	reg.UpdateAll(1)
	if rec.Calls() != 1 {
		t.Fatalf("Calls() = %d, want 1", rec.Calls())
	}
	if reg.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", reg.Len())
	}
}

func TestRegistrationDuringPass(t *testing.T) {
	var log testutil.Log
	a := testutil.NewRecorder("A", &log)
	b := testutil.NewRecorder("B", &log)
	reg := newRegistry(nil)
	a.OnUpdate = func(int64) {
		reg.Register(b)
		a.OnUpdate = nil
	}
	reg.Register(a)

	reg.UpdateAll(1)
	if !reflect.DeepEqual(log.Names(), []string{"A"}) {
		t.Fatalf("first pass names = %v, want [A]", log.Names())
	}
	reg.UpdateAll(1)
	if !reflect.DeepEqual(log.Names(), []string{"A", "A", "B"}) {
		t.Fatalf("names = %v, want [A A B]", log.Names())
	}
}

func TestReentrantDispatchPanics(t *testing.T) {
	tests := []struct {
		name     string
		dispatch func(reg *updatable.Registry)
	}{
		{"UpdateAll", func(reg *updatable.Registry) { reg.UpdateAll(1) }},
		{"Tick", func(reg *updatable.Registry) { reg.Tick() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newRegistry(nil)
			rec := testutil.NewRecorder("r", nil)
			rec.OnUpdate = func(int64) { tt.dispatch(reg) }
			reg.Register(rec)

			func() {
				defer func() {
					r := recover()
					err, ok := r.(error)
					if !ok || !errors.Is(err, updatable.ErrReentrantDispatch) {
						t.Fatalf("recovered %v, want ErrReentrantDispatch", r)
					}
				}()
				reg.UpdateAll(1)
			}()

			// The registry must be usable after the panic unwound the pass.
			rec.OnUpdate = nil
			reg.UpdateAll(2)
			if !reflect.DeepEqual(rec.Deltas, []int64{1, 2}) {
				t.Fatalf("Deltas = %v, want [1 2]", rec.Deltas)
			}
		})
	}
}

func TestFuncParticipant(t *testing.T) {
	var got []int64
	f := updatable.NewFunc(func(delta int64) { got = append(got, delta) })
	reg := newRegistry(nil)
	reg.Register(f)
	reg.SetDebugMode(true)

	reg.UpdateAll(4)
	reg.UpdateAll(5)
	if !reflect.DeepEqual(got, []int64{4, 5}) {
		t.Fatalf("got %v, want [4 5]", got)
	}
	if !f.DebugMode() {
		t.Fatal("Func did not receive broadcast")
	}

	updatable.NewFunc(nil).Update(1)
}

func TestBaseUpdateIsNoop(t *testing.T) {
	type idle struct{ updatable.Base }
	p := &idle{}
	reg := newRegistry(nil)
	reg.Register(p)
	reg.UpdateAll(100)
	if p.DebugMode() {
		t.Fatal("no-op update changed debug mode")
	}
}

func TestSnapshot(t *testing.T) {
	id := updatable.New().ID()
	reg := updatable.New(updatable.WithClock(clock.NewManual(0)), updatable.WithID(id), updatable.WithCapacity(4))
	recs := testutil.NewRecorders(nil, "A", "B")
	handles := testutil.RegisterAll(reg, recs...)
	reg.SetDebugMode(true)
	reg.UpdateAll(1)

	snap := reg.Snapshot()
	if snap.ID != id.String() {
		t.Errorf("ID = %q, want %q", snap.ID, id)
	}
	if snap.Participants != 2 || len(snap.Entries) != 2 {
		t.Fatalf("participants = %d entries = %d, want 2", snap.Participants, len(snap.Entries))
	}
	if snap.Passes != 1 || !snap.DebugMode || snap.Started {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Entries[0].Handle != handles[0].String() {
		t.Errorf("entry handle = %q, want %q", snap.Entries[0].Handle, handles[0])
	}
	if snap.Entries[1].Type != "*testutil.Recorder" || !snap.Entries[1].DebugMode {
		t.Errorf("entry = %+v", snap.Entries[1])
	}
}
