package profiling

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	})
}

func doRequest(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	return rec
}

func TestDisabledProfilerRecordsNothing(t *testing.T) {
	p := New()
	h := p.Wrap("detect", okHandler("hi"))

	doRequest(t, h)

	snap := p.Snapshot()
	if snap.Enabled {
		t.Fatal("profiler should start disabled")
	}
	if len(snap.Routes) != 0 {
		t.Fatalf("expected no routes recorded, got %v", snap.Routes)
	}
}

func TestEnabledProfilerAccumulates(t *testing.T) {
	p := New()
	h := p.Wrap("detect", okHandler("hi"))

	p.Start()
	doRequest(t, h)
	doRequest(t, h)
	doRequest(t, h)

	snap := p.Snapshot()
	st, ok := snap.Routes["detect"]
	if !ok {
		t.Fatal("route not recorded")
	}
	if st.Calls != 3 {
		t.Fatalf("Calls = %d, want 3", st.Calls)
	}
	if st.TotalTime < st.MaxTime {
		t.Fatalf("TotalTime %v < MaxTime %v", st.TotalTime, st.MaxTime)
	}
	if st.MinTime > st.MaxTime {
		t.Fatalf("MinTime %v > MaxTime %v", st.MinTime, st.MaxTime)
	}
	if st.LastUpdated.IsZero() {
		t.Fatal("LastUpdated not set")
	}
}

func TestStopFreezesStats(t *testing.T) {
	p := New()
	h := p.Wrap("detect", okHandler("hi"))

	p.Start()
	doRequest(t, h)
	p.Stop()
	doRequest(t, h)

	snap := p.Snapshot()
	if snap.Enabled {
		t.Fatal("profiler should be disabled after Stop")
	}
	if got := snap.Routes["detect"].Calls; got != 1 {
		t.Fatalf("Calls = %d, want 1 (stats frozen while stopped)", got)
	}
}

func TestWrapDoesNotAlterResponse(t *testing.T) {
	p := New()
	h := p.Wrap("detect", okHandler("payload"))

	p.Start()
	on := doRequest(t, h)
	p.Stop()
	off := doRequest(t, h)

	if on.Code != off.Code || on.Body.String() != off.Body.String() {
		t.Fatalf("profiler altered output: on=(%d,%q) off=(%d,%q)",
			on.Code, on.Body.String(), off.Code, off.Body.String())
	}
}
