package store

import (
	"strconv"
	"testing"
	"time"

	"github.com/p1va/lspbridge/internal/bridge/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsReplaceWholesale(t *testing.T) {
	d := NewDiagnostics()
	uri := "file:///a.ts"

	d.Set(uri, []Diagnostic{{Message: "first"}})
	d.Set(uri, []Diagnostic{{Message: "second"}, {Message: "third"}})

	got := d.Get(uri)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Message)
}

func TestDiagnosticsGetUnknownURIIsEmpty(t *testing.T) {
	d := NewDiagnostics()
	assert.Empty(t, d.Get("file:///nope.ts"))
}

func TestDiagnosticsSnapshotIsIndependentCopy(t *testing.T) {
	d := NewDiagnostics()
	d.Set("file:///a.ts", []Diagnostic{{Message: "x"}})

	snap := d.Snapshot()
	snap["file:///a.ts"][0].Message = "mutated"

	assert.Equal(t, "x", d.Get("file:///a.ts")[0].Message)
}

func TestLogRingEvictsStrictFIFO(t *testing.T) {
	ring := NewLogRing(1000)
	for i := 0; i < 1005; i++ {
		ring.Append(LogInfo, "entry"+strconv.Itoa(i), time.Now())
	}

	assert.Equal(t, 1000, ring.Len())
	snap := ring.Snapshot()
	require.Len(t, snap, 1000)
	assert.Equal(t, "entry5", snap[0].Message)
	assert.Equal(t, "entry1004", snap[999].Message)
}

func TestLogRingMinimumCapacity(t *testing.T) {
	ring := NewLogRing(10)
	for i := 0; i < 1000; i++ {
		ring.Append(LogInfo, "x", time.Now())
	}
	assert.Equal(t, 1000, ring.Len())
}

func TestLogRingSnapshotChronological(t *testing.T) {
	ring := NewLogRing(1000)
	ring.Append(LogInfo, "a", time.Now())
	ring.Append(LogInfo, "b", time.Now())
	ring.Append(LogInfo, "c", time.Now())

	snap := ring.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "a", snap[0].Message)
	assert.Equal(t, "c", snap[2].Message)
}

func TestProvidersLastWins(t *testing.T) {
	p := NewProviders()
	p.Add(DiagnosticProvider{ID: "p1", WorkspaceDiagnostics: false})
	p.Add(DiagnosticProvider{ID: "p1", WorkspaceDiagnostics: true})

	list := p.List()
	require.Len(t, list, 1)
	assert.True(t, list[0].WorkspaceDiagnostics)
}

func TestDocumentsVersionMonotonicAcrossReopen(t *testing.T) {
	docs := NewDocuments()
	uri := "file:///a.ts"

	v1 := docs.NextVersion(uri)
	docs.Put(uri, &OpenDocument{URI: uri, Version: v1, IsOpen: true})
	docs.Remove(uri)

	v2 := docs.NextVersion(uri)
	assert.Greater(t, v2, v1)
}

func TestDocumentsHasAfterPutAndRemove(t *testing.T) {
	docs := NewDocuments()
	uri := "file:///a.ts"

	assert.False(t, docs.Has(uri))
	docs.Put(uri, &OpenDocument{URI: uri})
	assert.True(t, docs.Has(uri))
	docs.Remove(uri)
	assert.False(t, docs.Has(uri))
}

func TestDocumentsLockURISerializes(t *testing.T) {
	docs := NewDocuments()
	uri := "file:///a.ts"

	unlock := docs.LockURI(uri)
	done := make(chan struct{})
	go func() {
		unlock2 := docs.LockURI(uri)
		close(done)
		unlock2()
	}()

	select {
	case <-done:
		t.Fatal("second LockURI should not have proceeded before the first unlocked")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-done
}

func TestZeroBasedRangeUsableInDiagnostic(t *testing.T) {
	z, err := position.NewZeroBased(0, 0)
	require.NoError(t, err)
	d := Diagnostic{Range: position.ZeroBasedRange{Start: z, End: z}, Severity: SeverityError}
	assert.Equal(t, SeverityError, d.Severity)
}
