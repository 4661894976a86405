package scan

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"prodscan/internal/catalog"
	"prodscan/internal/discogs"
	"prodscan/internal/services"
	"prodscan/internal/store"
)

type fakeLister struct {
	pages map[int][]discogs.ArtistRelease
	total int
	errs  map[int]error
	calls []int
}

func (f *fakeLister) ArtistReleases(_ context.Context, _ string, page int) (*discogs.ArtistReleasesPage, error) {
	f.calls = append(f.calls, page)
	if err := f.errs[page]; err != nil {
		return nil, err
	}
	rows, ok := f.pages[page]
	if !ok {
		return &discogs.ArtistReleasesPage{}, nil
	}
	return &discogs.ArtistReleasesPage{
		Pagination: &discogs.Pagination{Page: page, Pages: f.total},
		Releases:   &rows,
	}, nil
}

type fakeResolver struct {
	// failures counts how many more times an id fails before succeeding.
	failures map[int64]int
	onCall   func(stub catalog.Stub) error
	calls    []int64
	items    map[int64]catalog.Item
}

func (f *fakeResolver) Resolve(ctx context.Context, stub catalog.Stub, _ []string) (catalog.Item, error) {
	f.calls = append(f.calls, stub.ID)
	if f.onCall != nil {
		if err := f.onCall(stub); err != nil {
			return catalog.Item{}, err
		}
	}
	if f.failures[stub.ID] > 0 {
		f.failures[stub.ID]--
		return catalog.Item{}, services.Wrap(services.ErrTransient, "resolve", "fetch", "", errors.New("503 from upstream"))
	}
	if item, ok := f.items[stub.ID]; ok {
		return item, nil
	}
	return catalog.Item{
		ID:       stub.ID,
		Kind:     stub.Kind,
		IsMaster: stub.IsMaster(),
		Title:    stub.Title,
		Credits:  "Produced",
	}, nil
}

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

type progressRecorder struct {
	NopObserver
	reports []Progress
}

func (p *progressRecorder) Progress(pr Progress) {
	p.reports = append(p.reports, pr)
}

type harness struct {
	orch     *Orchestrator
	repo     *store.Repository
	lister   *fakeLister
	resolver *fakeResolver
	sleeper  *sleepRecorder
	observer *progressRecorder
}

func newHarness(t *testing.T, lister *fakeLister, resolver *fakeResolver) *harness {
	t.Helper()
	kv, err := store.OpenBadger("")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	if resolver.failures == nil {
		resolver.failures = map[int64]int{}
	}
	h := &harness{
		repo:     store.NewRepository(kv),
		lister:   lister,
		resolver: resolver,
		sleeper:  &sleepRecorder{},
		observer: &progressRecorder{},
	}
	orch, err := New(Config{
		Lister:       lister,
		Resolver:     resolver,
		State:        h.repo,
		Observer:     h.observer,
		OnlyMainRole: true,
		Sleep:        h.sleeper.sleep,
		Now:          func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	h.orch = orch
	return h
}

func newSession() *Session {
	return NewSession("42", "The Weeknd", 1100*time.Millisecond)
}

func release(id int64, role string) discogs.ArtistRelease {
	return discogs.ArtistRelease{ID: id, Type: "release", Title: fmt.Sprintf("Release %d", id), Role: role}
}

func master(id int64) discogs.ArtistRelease {
	return discogs.ArtistRelease{ID: id, Type: "master", Title: fmt.Sprintf("Master %d", id), Role: "Main"}
}

func TestNewSessionDerivesVariants(t *testing.T) {
	s := newSession()
	if s.ID == "" {
		t.Fatal("expected session id")
	}
	want := map[string]bool{"the weeknd": true, "The Weeknd": true, "weeknd": true}
	for _, v := range s.Variants {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Fatalf("missing variants %v in %v", want, s.Variants)
	}
}

func TestSyncRespectsWatermarkAndMainRole(t *testing.T) {
	lister := &fakeLister{
		total: 2,
		pages: map[int][]discogs.ArtistRelease{
			1: {release(50, "Main"), release(150, "Main"), release(160, "Appearance"), master(170)},
			2: {release(200, ""), release(90, "Main")},
		},
	}
	h := newHarness(t, lister, &fakeResolver{})
	ctx := context.Background()
	if err := h.repo.SaveCollection(ctx, "42", []catalog.Item{{ID: 100, Kind: catalog.KindRelease}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := h.orch.Sync(ctx, newSession())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	wantCalls := []int64{150, 170, 200}
	if fmt.Sprint(h.resolver.calls) != fmt.Sprint(wantCalls) {
		t.Fatalf("expected resolve calls %v, got %v", wantCalls, h.resolver.calls)
	}
	for _, id := range h.resolver.calls {
		if id <= 100 {
			t.Fatalf("resolved id %d at or below watermark", id)
		}
	}
	if result.Discovered != 3 || result.Added != 3 || result.Collection != 4 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.LastUpdated.IsZero() {
		t.Fatal("expected completed sync to stamp last updated")
	}
	if _, ok, _ := h.repo.LastUpdated(ctx, "42"); !ok {
		t.Fatal("expected last updated persisted")
	}

	// page waits then item waits: first item short, rest full delay
	want := []time.Duration{
		100 * time.Millisecond, 550 * time.Millisecond,
		100 * time.Millisecond, 1100 * time.Millisecond, 1100 * time.Millisecond,
	}
	if fmt.Sprint(h.sleeper.waits) != fmt.Sprint(want) {
		t.Fatalf("expected waits %v, got %v", want, h.sleeper.waits)
	}
}

func TestSyncWithoutMainRoleFilterKeepsAppearances(t *testing.T) {
	lister := &fakeLister{total: 1, pages: map[int][]discogs.ArtistRelease{
		1: {release(1, "Appearance"), release(2, "TrackAppearance")},
	}}
	h := newHarness(t, lister, &fakeResolver{})
	h.orch.onlyMainRole = false

	result, err := h.orch.Sync(context.Background(), newSession())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Added != 2 {
		t.Fatalf("expected both rows resolved, got %+v", result)
	}
}

func TestRetryQueueConvergence(t *testing.T) {
	lister := &fakeLister{total: 1, pages: map[int][]discogs.ArtistRelease{
		1: {release(5, "Main"), release(6, "Main")},
	}}
	resolver := &fakeResolver{failures: map[int64]int{5: 1}}
	h := newHarness(t, lister, resolver)
	ctx := context.Background()

	first, err := h.orch.Sync(ctx, newSession())
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.Failed != 1 || first.QueueLength != 1 {
		t.Fatalf("expected one failure after first sync, got %+v", first)
	}
	queue, _ := h.repo.FailedQueue(ctx, "42")
	if len(queue) != 1 || queue[0].ID != 5 || queue[0].Kind != catalog.KindRelease {
		t.Fatalf("unexpected queue %+v", queue)
	}

	second, err := h.orch.Sync(ctx, newSession())
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.Recovered != 1 || second.Discovered != 0 {
		t.Fatalf("unexpected second result %+v", second)
	}
	queue, _ = h.repo.FailedQueue(ctx, "42")
	if len(queue) != 0 {
		t.Fatalf("expected empty queue, got %+v", queue)
	}
	items, _ := h.repo.Collection(ctx, "42")
	if got := len(catalog.FindByID(items, 5)); got != 1 {
		t.Fatalf("expected item 5 exactly once, got %d in %+v", got, items)
	}
}

func TestRepeatedFailureUpdatesQueueEntry(t *testing.T) {
	lister := &fakeLister{total: 1, pages: map[int][]discogs.ArtistRelease{1: {release(5, "Main"), release(6, "Main")}}}
	h := newHarness(t, lister, &fakeResolver{failures: map[int64]int{5: 3}})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := h.orch.Sync(ctx, newSession()); err != nil {
			t.Fatalf("sync %d: %v", i, err)
		}
	}
	queue, _ := h.repo.FailedQueue(ctx, "42")
	if len(queue) != 1 {
		t.Fatalf("expected a single queue entry, got %+v", queue)
	}
}

func TestStopQueuesRemainingItems(t *testing.T) {
	lister := &fakeLister{total: 1, pages: map[int][]discogs.ArtistRelease{
		1: {release(1, "Main"), release(2, "Main"), release(3, "Main")},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resolver := &fakeResolver{onCall: func(stub catalog.Stub) error {
		if stub.ID == 2 {
			cancel()
			return services.Wrap(services.ErrCancelled, "resolve", "after release fetch", "", context.Canceled)
		}
		return nil
	}}
	h := newHarness(t, lister, resolver)

	result, err := h.orch.Sync(ctx, newSession())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !result.Stopped {
		t.Fatalf("expected stopped result, got %+v", result)
	}

	bg := context.Background()
	items, _ := h.repo.Collection(bg, "42")
	if len(items) != 1 || items[0].ID != 1 {
		t.Fatalf("expected item 1 persisted, got %+v", items)
	}
	queue, _ := h.repo.FailedQueue(bg, "42")
	messages := map[int64]string{}
	for _, f := range queue {
		messages[f.ID] = f.Error
	}
	if messages[2] != services.StoppedDuringMessage || messages[3] != services.StoppedBeforeMessage {
		t.Fatalf("unexpected stop messages %v", messages)
	}
	if _, ok, _ := h.repo.LastUpdated(bg, "42"); ok {
		t.Fatal("stopped sync should not stamp last updated")
	}
	if last := h.observer.reports[len(h.observer.reports)-1]; last.Phase != PhaseStopped {
		t.Fatalf("expected final phase stopped, got %+v", last)
	}
}

func TestCancelledBeforeSyncQueuesNothingNew(t *testing.T) {
	lister := &fakeLister{total: 1, pages: map[int][]discogs.ArtistRelease{1: {release(1, "Main")}}}
	h := newHarness(t, lister, &fakeResolver{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := h.orch.Sync(ctx, newSession())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !result.Stopped || len(lister.calls) != 0 || len(h.resolver.calls) != 0 {
		t.Fatalf("expected no network work, result=%+v listings=%v", result, lister.calls)
	}
}

func TestListingErrorEndsPaging(t *testing.T) {
	lister := &fakeLister{
		total: 3,
		pages: map[int][]discogs.ArtistRelease{1: {release(1, "Main")}, 3: {release(3, "Main")}},
		errs:  map[int]error{2: errors.New("502 bad gateway")},
	}
	h := newHarness(t, lister, &fakeResolver{})

	result, err := h.orch.Sync(context.Background(), newSession())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Stopped || result.Added != 1 {
		t.Fatalf("expected page 1 items only, got %+v", result)
	}
	if fmt.Sprint(lister.calls) != "[1 2]" {
		t.Fatalf("expected paging to stop after page 2, got %v", lister.calls)
	}
}

func TestMalformedListingEndsPaging(t *testing.T) {
	lister := &fakeLister{total: 2}
	h := newHarness(t, lister, &fakeResolver{})

	result, err := h.orch.Sync(context.Background(), newSession())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Discovered != 0 || len(lister.calls) != 1 {
		t.Fatalf("expected a single listing call, got %v result=%+v", lister.calls, result)
	}
}

func TestSyncDeduplicatesRepresentedReleases(t *testing.T) {
	lister := &fakeLister{total: 1, pages: map[int][]discogs.ArtistRelease{1: {master(300)}}}
	resolver := &fakeResolver{items: map[int64]catalog.Item{
		300: {ID: 300, Kind: catalog.KindMaster, IsMaster: true, RepresentativeID: 20},
	}}
	h := newHarness(t, lister, resolver)
	ctx := context.Background()
	seed := []catalog.Item{{ID: 20, Kind: catalog.KindRelease}, {ID: 21, Kind: catalog.KindRelease}}
	if err := h.repo.SaveCollection(ctx, "42", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := h.orch.Sync(ctx, newSession()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	items, _ := h.repo.Collection(ctx, "42")
	if len(items) != 2 || !items[0].IsMaster || items[1].ID != 21 {
		t.Fatalf("expected master then release 21, got %+v", items)
	}
}

func TestRetryItem(t *testing.T) {
	h := newHarness(t, &fakeLister{}, &fakeResolver{})
	ctx := context.Background()
	stub := catalog.Stub{ID: 9, Kind: catalog.KindMaster, Title: "Queued"}
	queue := []catalog.FailedItem{
		catalog.NewFailedItem(stub, "boom", time.Now()),
		catalog.NewFailedItem(catalog.Stub{ID: 10, Kind: catalog.KindRelease}, "boom", time.Now()),
	}
	if err := h.repo.SaveFailedQueue(ctx, "42", queue); err != nil {
		t.Fatalf("seed: %v", err)
	}

	item, err := h.orch.RetryItem(ctx, newSession(), 9, "")
	if err != nil {
		t.Fatalf("retry item: %v", err)
	}
	if item.ID != 9 || !item.IsMaster {
		t.Fatalf("unexpected item %+v", item)
	}
	if fmt.Sprint(h.resolver.calls) != "[9]" {
		t.Fatalf("expected only item 9 resolved, got %v", h.resolver.calls)
	}
	remaining, _ := h.repo.FailedQueue(ctx, "42")
	if len(remaining) != 1 || remaining[0].ID != 10 {
		t.Fatalf("expected only item 10 left, got %+v", remaining)
	}

	if _, err := h.orch.RetryItem(ctx, newSession(), 404, ""); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRetryItemFailureKeepsEntry(t *testing.T) {
	resolver := &fakeResolver{failures: map[int64]int{9: 1}}
	h := newHarness(t, &fakeLister{}, resolver)
	ctx := context.Background()
	stub := catalog.Stub{ID: 9, Kind: catalog.KindRelease}
	if err := h.repo.SaveFailedQueue(ctx, "42", []catalog.FailedItem{catalog.NewFailedItem(stub, "old", time.Now())}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := h.orch.RetryItem(ctx, newSession(), 9, catalog.KindRelease); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	queue, _ := h.repo.FailedQueue(ctx, "42")
	if len(queue) != 1 || queue[0].Error == "old" {
		t.Fatalf("expected refreshed queue entry, got %+v", queue)
	}
}

func TestRetryFailedEmptyQueue(t *testing.T) {
	h := newHarness(t, &fakeLister{}, &fakeResolver{})
	result, err := h.orch.RetryFailed(context.Background(), newSession())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if result.Retried != 0 || len(h.resolver.calls) != 0 {
		t.Fatalf("expected no work, got %+v", result)
	}
}

func TestSyncRequiresArtist(t *testing.T) {
	h := newHarness(t, &fakeLister{}, &fakeResolver{})
	if _, err := h.orch.Sync(context.Background(), NewSession("", "", time.Second)); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
