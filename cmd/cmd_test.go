package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/nethserver/phonehome-widget/internal/phonehome"
	"github.com/pterm/pterm"
)

var outBuf syncBuffer

// setupStdoutCapture routes pterm output into outBuf for the test.
func setupStdoutCapture(t *testing.T) {
	t.Helper()
	outBuf.Reset()
	pterm.SetDefaultOutput(&outBuf)
	pterm.DisableStyling()
	t.Cleanup(func() {
		pterm.SetDefaultOutput(os.Stdout)
		pterm.EnableStyling()
	})
}

type FakeFetcher struct {
	mu        sync.Mutex
	calls     int
	FetchFunc func(ctx context.Context) phonehome.Result
}

func (f *FakeFetcher) Fetch(ctx context.Context) phonehome.Result {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.FetchFunc != nil {
		return f.FetchFunc(ctx)
	}
	return phonehome.Result{Outcome: phonehome.OutcomeSuccess}
}

func (f *FakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type FakeOpener struct {
	mu       sync.Mutex
	opened   []string
	OpenFunc func(url string) error
}

func (o *FakeOpener) Open(url string) error {
	o.mu.Lock()
	o.opened = append(o.opened, url)
	o.mu.Unlock()
	if o.OpenFunc != nil {
		return o.OpenFunc(url)
	}
	return nil
}

func (o *FakeOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

func succeed(total, entries int) func(context.Context) phonehome.Result {
	return func(context.Context) phonehome.Result {
		return phonehome.Result{Outcome: phonehome.OutcomeSuccess, Total: total, Entries: entries}
	}
}

func failTransport(context.Context) phonehome.Result {
	return phonehome.Result{
		Outcome: phonehome.OutcomeTransportFailure,
		Err:     errors.Join(phonehome.ErrTransport, errors.New("connection refused")),
	}
}

// syncBuffer is a bytes.Buffer safe for a writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
