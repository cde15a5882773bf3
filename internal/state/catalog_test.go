package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedash/filedash/internal/events"
	"github.com/filedash/filedash/internal/models"
)

// gatedLister blocks each call until the test releases it with a result.
type gatedLister struct {
	mu    sync.Mutex
	calls []models.SearchCriteria
	gates []chan listResult
}

type listResult struct {
	files []models.FileRecord
	err   error
}

func (l *gatedLister) ListFiles(ctx context.Context, criteria models.SearchCriteria) ([]models.FileRecord, error) {
	gate := make(chan listResult, 1)
	l.mu.Lock()
	l.calls = append(l.calls, criteria)
	l.gates = append(l.gates, gate)
	l.mu.Unlock()

	select {
	case r := <-gate:
		return r.files, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *gatedLister) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func (l *gatedLister) call(i int) models.SearchCriteria {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[i]
}

func (l *gatedLister) release(i int, r listResult) {
	l.mu.Lock()
	gate := l.gates[i]
	l.mu.Unlock()
	gate <- r
}

// staticLister answers every call immediately.
type staticLister struct {
	mu    sync.Mutex
	calls []models.SearchCriteria
	files []models.FileRecord
	err   error
}

func (l *staticLister) ListFiles(_ context.Context, criteria models.SearchCriteria) ([]models.FileRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, criteria)
	return l.files, l.err
}

func (l *staticLister) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func records(names ...string) []models.FileRecord {
	out := make([]models.FileRecord, len(names))
	for i, n := range names {
		out[i] = models.FileRecord{ID: models.FileID(n), Filename: n}
	}
	return out
}

func TestRefreshCommitsSnapshotInServerOrder(t *testing.T) {
	lister := &staticLister{files: records("b.txt", "a.pdf", "c.txt")}
	cat := NewFileCatalog(lister, time.Hour, nil, nil)
	defer cat.Close()

	assert.Equal(t, StatusIdle, cat.Status())
	require.NoError(t, cat.Refresh(context.Background()))

	assert.Equal(t, StatusReady, cat.Status())
	assert.Equal(t, records("b.txt", "a.pdf", "c.txt"), cat.Files())
	assert.Equal(t, uint64(1), cat.CommittedSeq())
}

func TestTypingBurstIssuesOneFetchWithFinalQuery(t *testing.T) {
	lister := &staticLister{files: records("report.pdf")}
	cat := NewFileCatalog(lister, 50*time.Millisecond, nil, nil)
	defer cat.Close()

	for _, q := range []string{"r", "re", "rep", "repo"} {
		cat.SetQuery(q)
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return lister.callCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, lister.callCount())

	lister.mu.Lock()
	assert.Equal(t, "repo", lister.calls[0].Query)
	lister.mu.Unlock()
}

func TestQueryAndExtensionShareOneDebounce(t *testing.T) {
	lister := &staticLister{}
	cat := NewFileCatalog(lister, 50*time.Millisecond, nil, nil)
	defer cat.Close()

	cat.SetQuery("rep")
	cat.SetExtensionFilter("pdf")

	require.Eventually(t, func() bool { return lister.callCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, 1, lister.callCount())

	lister.mu.Lock()
	assert.Equal(t, models.SearchCriteria{Query: "rep", Extension: "pdf"}, lister.calls[0])
	lister.mu.Unlock()
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	lister := &gatedLister{}
	cat := NewFileCatalog(lister, time.Hour, nil, nil)
	defer cat.Close()

	ctx := context.Background()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = cat.Refresh(ctx)
	}()
	require.Eventually(t, func() bool { return lister.callCount() == 1 }, time.Second, time.Millisecond)

	cat.mu.Lock()
	cat.criteria.Query = "new"
	cat.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = cat.Refresh(ctx)
	}()
	require.Eventually(t, func() bool { return lister.callCount() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, "new", lister.call(1).Query)

	// Newer fetch completes first
	lister.release(1, listResult{files: records("new.txt")})
	require.Eventually(t, func() bool { return cat.CommittedSeq() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, StatusFetching, cat.Status())

	lister.release(0, listResult{files: records("old.txt")})
	wg.Wait()

	assert.Equal(t, records("new.txt"), cat.Files())
	assert.Equal(t, StatusReady, cat.Status())
}

func TestFailedFetchKeepsPreviousSnapshot(t *testing.T) {
	lister := &staticLister{files: records("a.txt")}
	cat := NewFileCatalog(lister, time.Hour, nil, nil)
	defer cat.Close()

	require.NoError(t, cat.Refresh(context.Background()))

	boom := errors.New("boom")
	lister.mu.Lock()
	lister.files, lister.err = nil, boom
	lister.mu.Unlock()

	err := cat.Refresh(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StatusError, cat.Status())
	assert.ErrorIs(t, cat.Err(), boom)
	assert.Equal(t, records("a.txt"), cat.Files())

	// A later success clears the error
	lister.mu.Lock()
	lister.files, lister.err = records("b.txt"), nil
	lister.mu.Unlock()
	require.NoError(t, cat.Refresh(context.Background()))
	assert.NoError(t, cat.Err())
	assert.Equal(t, StatusReady, cat.Status())
}

func TestStaleErrorDoesNotOverrideNewerSuccess(t *testing.T) {
	lister := &gatedLister{}
	cat := NewFileCatalog(lister, time.Hour, nil, nil)
	defer cat.Close()

	errs := make(chan error, 2)
	go func() { errs <- cat.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return lister.callCount() == 1 }, time.Second, time.Millisecond)
	go func() { errs <- cat.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return lister.callCount() == 2 }, time.Second, time.Millisecond)

	lister.release(1, listResult{files: records("fresh.txt")})
	require.Eventually(t, func() bool { return cat.CommittedSeq() == 2 }, time.Second, time.Millisecond)
	lister.release(0, listResult{err: errors.New("late failure")})

	<-errs
	<-errs
	assert.Equal(t, StatusReady, cat.Status())
	assert.NoError(t, cat.Err())
	assert.Equal(t, records("fresh.txt"), cat.Files())
}

func TestVisibleFilesFiltersByExtension(t *testing.T) {
	lister := &staticLister{files: records("a.PDF", "b.txt", "c.pdf", "pdf")}
	cat := NewFileCatalog(lister, time.Hour, nil, nil)
	defer cat.Close()

	require.NoError(t, cat.Refresh(context.Background()))
	assert.Len(t, cat.VisibleFiles(), 4)

	cat.SetExtensionFilter("pdf")
	assert.Equal(t, records("a.PDF", "c.pdf"), cat.VisibleFiles())

	cat.SetExtensionFilter("")
	assert.Len(t, cat.VisibleFiles(), 4)
}

func TestFilesReturnsCopy(t *testing.T) {
	lister := &staticLister{files: records("a.txt")}
	cat := NewFileCatalog(lister, time.Hour, nil, nil)
	defer cat.Close()
	require.NoError(t, cat.Refresh(context.Background()))

	files := cat.Files()
	files[0].Filename = "mutated"
	assert.Equal(t, "a.txt", cat.Files()[0].Filename)
}

func TestCatalogPublishesEvents(t *testing.T) {
	bus := events.NewEventBus(16)
	defer bus.Close()
	ch := bus.SubscribeAll()

	lister := &staticLister{files: records("a.txt")}
	cat := NewFileCatalog(lister, time.Hour, bus, nil)
	defer cat.Close()
	require.NoError(t, cat.Refresh(context.Background()))

	first := (<-ch).(*events.CatalogEvent)
	assert.Equal(t, events.EventCatalogLoading, first.Type())
	assert.Equal(t, uint64(1), first.Seq)

	second := (<-ch).(*events.CatalogEvent)
	assert.Equal(t, events.EventCatalogUpdated, second.Type())
	assert.Equal(t, records("a.txt"), second.Files)
}

func TestCloseCancelsPendingDebounce(t *testing.T) {
	lister := &staticLister{}
	cat := NewFileCatalog(lister, 30*time.Millisecond, nil, nil)

	cat.SetQuery("x")
	cat.Close()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, lister.callCount())
}
