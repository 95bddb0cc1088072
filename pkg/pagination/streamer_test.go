package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/wp-reader/pkg/client"
	"github.com/zoobzio/clockz"
)

type testItem struct {
	ID int `json:"id"`
}

// fakeTransport serves page URLs from a handler and records every request.
type fakeTransport struct {
	handler func(ctx context.Context, method string, page int) (*client.Response, error)

	mu      sync.Mutex
	pages   []int
	methods []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeTransport) Do(ctx context.Context, method, rawURL string) (*client.Response, error) {
	page := pageNumber(rawURL)

	f.mu.Lock()
	f.pages = append(f.pages, page)
	f.methods = append(f.methods, method)
	f.mu.Unlock()

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	return f.handler(ctx, method, page)
}

func (f *fakeTransport) requested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]int(nil), f.pages...)
	sort.Ints(out)
	return out
}

func okPage(page int) *client.Response {
	return &client.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       []byte(fmt.Sprintf(`[{"id":%d},{"id":%d}]`, page*10, page*10+1)),
	}
}

func instant(ctx context.Context, method string, page int) (*client.Response, error) {
	return okPage(page), nil
}

func testURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/wp-json/wp/v2/posts?page=%d&per_page=2", i+1)
	}
	return urls
}

func newTestStreamer(transport client.Transport, maxConcurrency int) *Streamer[testItem] {
	return NewStreamer[testItem](transport, client.JSONDecoder{}, Config{
		MaxConcurrency: maxConcurrency,
		Clock:          clockz.NewFakeClock(),
	})
}

func TestEffectiveConcurrency(t *testing.T) {
	tests := []struct {
		name string
		max  int
		n    int
		want int
	}{
		{"unbounded uses url count", 0, 7, 7},
		{"negative is unbounded", -3, 4, 4},
		{"one is raised to minimum", 1, 5, 2},
		{"explicit ceiling", 3, 10, 3},
		{"clamped to url count", 8, 5, 5},
		{"minimum clamped to single url", 1, 1, 1},
		{"no urls", 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveConcurrency(tt.max, tt.n); got != tt.want {
				t.Errorf("EffectiveConcurrency(%d, %d) = %d, want %d", tt.max, tt.n, got, tt.want)
			}
		})
	}
}

func TestBatches_ConcurrencyCap(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		wantCap int32
	}{
		{"capped at two", 2, 2},
		{"raised to two", 1, 2},
		{"capped at three", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{handler: func(ctx context.Context, method string, page int) (*client.Response, error) {
				time.Sleep(5 * time.Millisecond)
				return okPage(page), nil
			}}

			var pages []int
			for batch, err := range newTestStreamer(transport, tt.max).Batches(context.Background(), testURLs(5)) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				pages = append(pages, batch.Page)
			}

			if len(pages) != 5 {
				t.Errorf("got %d batches, want 5", len(pages))
			}
			if got := transport.maxInFlight.Load(); got > tt.wantCap {
				t.Errorf("max in flight = %d, want <= %d", got, tt.wantCap)
			}
		})
	}
}

func TestBatches_AllPagesDelivered(t *testing.T) {
	transport := &fakeTransport{handler: instant}

	seen := map[int][]testItem{}
	for batch, err := range newTestStreamer(transport, 0).Batches(context.Background(), testURLs(4)) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, dup := seen[batch.Page]; dup {
			t.Errorf("page %d delivered twice", batch.Page)
		}
		seen[batch.Page] = batch.Items
		if batch.URL != testURLs(4)[batch.Page-1] {
			t.Errorf("batch URL = %q for page %d", batch.URL, batch.Page)
		}
	}

	for page := 1; page <= 4; page++ {
		items := seen[page]
		if len(items) != 2 || items[0].ID != page*10 || items[1].ID != page*10+1 {
			t.Errorf("page %d items = %v, want server order", page, items)
		}
	}
}

func TestBatches_CompletionOrder(t *testing.T) {
	release := make(chan struct{})
	transport := &fakeTransport{handler: func(ctx context.Context, method string, page int) (*client.Response, error) {
		if page == 1 {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return okPage(page), nil
	}}

	var order []int
	for batch, err := range newTestStreamer(transport, 2).Batches(context.Background(), testURLs(2)) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		order = append(order, batch.Page)
		if batch.Page == 2 {
			close(release)
		}
	}

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("order = %v, want [2 1]", order)
	}
}

func TestBatches_AbortOnFirstError(t *testing.T) {
	pageErr := client.NewError(client.ErrRequestFailed, "page 3", nil)
	transport := &fakeTransport{handler: func(ctx context.Context, method string, page int) (*client.Response, error) {
		switch {
		case page == 3:
			return nil, pageErr
		case page > 3:
			// Pages submitted after the failure never complete on their own.
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return okPage(page), nil
	}}

	var (
		pages  []int
		errs   []error
		afterE bool
	)
	for batch, err := range newTestStreamer(transport, 2).Batches(context.Background(), testURLs(5)) {
		if len(errs) > 0 {
			afterE = true
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		pages = append(pages, batch.Page)
	}

	if len(errs) != 1 {
		t.Fatalf("got %d errors, want exactly 1", len(errs))
	}
	if afterE {
		t.Error("elements yielded after the error")
	}
	if !errors.Is(errs[0], pageErr) {
		t.Errorf("error = %v, want the page 3 error", errs[0])
	}
	for _, p := range pages {
		if p > 2 {
			t.Errorf("batch for page %d delivered after failure", p)
		}
	}
}

func TestBatches_ConsumerBreakStopsFetching(t *testing.T) {
	var stopped atomic.Bool
	transport := &fakeTransport{handler: func(ctx context.Context, method string, page int) (*client.Response, error) {
		if stopped.Load() {
			t.Errorf("page %d requested after the consumer stopped", page)
		}
		return okPage(page), nil
	}}

	consumed := 0
	for _, err := range newTestStreamer(transport, 2).Batches(context.Background(), testURLs(5)) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		consumed++
		if consumed == 2 {
			break
		}
	}
	stopped.Store(true)

	// Any fetch still running would show up here.
	time.Sleep(20 * time.Millisecond)

	requested := transport.requested()
	if len(requested) > 4 {
		t.Errorf("requested pages %v after consuming 2 batches, want at most 4", requested)
	}
	for _, p := range requested {
		if p == 5 {
			t.Error("page 5 requested after the consumer stopped")
		}
	}
}

func TestBatches_SuccessfulStreamNeverFails(t *testing.T) {
	tests := []struct {
		name string
		max  int
	}{
		{"bounded", 2},
		{"unbounded", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{handler: instant}
			streamer := newTestStreamer(transport, tt.max)

			for i := 0; i < 2000; i++ {
				batches := 0
				for _, err := range streamer.Batches(context.Background(), testURLs(5)) {
					if err != nil {
						t.Fatalf("run %d: unexpected error after %d batches: %v", i, batches, err)
					}
					batches++
				}
				if batches != 5 {
					t.Fatalf("run %d: got %d batches, want 5", i, batches)
				}
			}
		})
	}
}

func TestBatches_CancelledContext(t *testing.T) {
	transport := &fakeTransport{handler: instant}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs []error
	for _, err := range newTestStreamer(transport, 2).Batches(ctx, testURLs(5)) {
		if err == nil {
			t.Fatal("batch delivered from cancelled context")
		}
		errs = append(errs, err)
	}

	if len(errs) != 1 || !errors.Is(errs[0], context.Canceled) {
		t.Errorf("errors = %v, want a single context.Canceled", errs)
	}
	if n := len(transport.requested()); n != 0 {
		t.Errorf("%d requests issued with cancelled context", n)
	}
}

func TestBatches_NoURLs(t *testing.T) {
	transport := &fakeTransport{handler: instant}

	for range newTestStreamer(transport, 2).Batches(context.Background(), nil) {
		t.Fatal("element yielded for empty URL list")
	}
	if n := len(transport.requested()); n != 0 {
		t.Errorf("%d requests issued for empty URL list", n)
	}
}

func TestBatches_PageErrors(t *testing.T) {
	tests := []struct {
		name    string
		resp    *client.Response
		variant error
		class   client.Class
	}{
		{
			name:    "undecodable body",
			resp:    &client.Response{StatusCode: http.StatusOK, Body: []byte(`{"id":1}`)},
			variant: client.ErrNotDecodable,
			class:   client.ClassDecode,
		},
		{
			name: "wordpress error document",
			resp: &client.Response{
				StatusCode: http.StatusBadRequest,
				Body:       []byte(`{"code":"rest_invalid_param","message":"Invalid parameter(s): per_page"}`),
			},
			variant: client.ErrAPI,
			class:   client.ClassAPI,
		},
		{
			name:    "server failure",
			resp:    &client.Response{StatusCode: http.StatusServiceUnavailable},
			variant: client.ErrRequestFailed,
			class:   client.ClassTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{handler: func(ctx context.Context, method string, page int) (*client.Response, error) {
				return tt.resp, nil
			}}

			_, err := Collect(newTestStreamer(transport, 0).Batches(context.Background(), testURLs(1)))
			if !errors.Is(err, tt.variant) {
				t.Fatalf("error = %v, want %v", err, tt.variant)
			}
			if client.ClassOf(err) != tt.class {
				t.Errorf("ClassOf() = %q, want %q", client.ClassOf(err), tt.class)
			}
		})
	}
}

func TestItems(t *testing.T) {
	transport := &fakeTransport{handler: instant}

	var ids []int
	for it, err := range newTestStreamer(transport, 0).Items(context.Background(), testURLs(3)) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, it.ID)
	}
	sort.Ints(ids)

	want := []int{10, 11, 20, 21, 30, 31}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestItems_BreakMidBatch(t *testing.T) {
	transport := &fakeTransport{handler: instant}

	n := 0
	for range newTestStreamer(transport, 2).Items(context.Background(), testURLs(5)) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("consumed %d items, want 3", n)
	}
}

func TestCollect_KeepsItemsBeforeError(t *testing.T) {
	transport := &fakeTransport{handler: func(ctx context.Context, method string, page int) (*client.Response, error) {
		if page == 2 {
			return nil, client.NewError(client.ErrNetwork, "", errors.New("reset"))
		}
		return okPage(page), nil
	}}

	// Page 1 may arrive before the failure of page 2 is registered.
	items, err := Collect(newTestStreamer(transport, 2).Batches(context.Background(), testURLs(2)))
	if !errors.Is(err, client.ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
	if len(items) != 0 && len(items) != 2 {
		t.Errorf("len(items) = %d, want 0 or 2", len(items))
	}
}

func TestPageNumber(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"https://example.com/posts?page=3&per_page=10", 3},
		{"https://example.com/posts", 0},
		{"https://example.com/posts?page=x", 0},
		{"%zz", 0},
	}

	for _, tt := range tests {
		if got := pageNumber(tt.url); got != tt.want {
			t.Errorf("pageNumber(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}
