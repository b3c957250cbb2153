package cmd

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/nethserver/phonehome-widget/internal/badge"
	"github.com/nethserver/phonehome-widget/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Endpoint = "https://example.org/phone-home/index.php?"
	cfg.WidgetURL = "https://example.org/phone-home/widget_map.html"
	cfg.PaintDelayMs = 1
	return &cfg
}

func TestRunTerminal_PaintsCountAndOpensOnEnter(t *testing.T) {
	setupStdoutCapture(t)

	in, typed := io.Pipe()
	t.Cleanup(func() { _ = typed.Close() })

	var badgeOut syncBuffer
	fetcher := &FakeFetcher{FetchFunc: succeed(4242, 3)}
	opener := &FakeOpener{}
	r := RunCmd{cfg: testConfig(), fetcher: fetcher, opener: opener, in: in, out: &badgeOut}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Terminal(ctx) }()

	require.Eventually(t, func() bool {
		out := badgeOut.String()
		return strings.Contains(out, "...") && strings.Contains(out, "XHR") && strings.Contains(out, "4242")
	}, 2*time.Second, 5*time.Millisecond)

	_, err := typed.Write([]byte("\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(opener.Opened()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Terminal did not return after cancel")
	}

	assert.Equal(t, []string{"https://example.org/phone-home/widget_map.html"}, opener.Opened())
	assert.Equal(t, 1, fetcher.Calls())
	assert.Contains(t, outBuf.String(), "every 1h")
}

func TestRunTerminal_TransportFailureShowsRetrying(t *testing.T) {
	setupStdoutCapture(t)

	var badgeOut syncBuffer
	cfg := testConfig()
	cfg.ErrorIntervalMs = 3600000
	r := RunCmd{cfg: cfg, fetcher: &FakeFetcher{FetchFunc: failTransport}, in: blockingStdin{}, out: &badgeOut}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Terminal(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Count(badgeOut.String(), "...") >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, outBuf.String(), "Installation count update failed")
}

func TestRunCmd_NewUpdaterCarriesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.IntervalMs = 120000
	cfg.ErrorIntervalMs = 7000

	u, err := RunCmd{cfg: cfg, fetcher: &FakeFetcher{}}.newUpdater(&badge.Recorder{})
	require.NoError(t, err)
	t.Cleanup(u.Close)

	interval, errorInterval := u.Intervals()
	assert.Equal(t, 2*time.Minute, interval)
	assert.Equal(t, 7*time.Second, errorInterval)
	assert.Equal(t, cfg.WidgetURL, u.URLPhoneHome())
}

func TestRunCmd_NewUpdaterNeedsFetcher(t *testing.T) {
	_, err := RunCmd{cfg: testConfig()}.newUpdater(&badge.Recorder{})
	assert.Error(t, err)
}


type blockingStdin struct{}

func (blockingStdin) Read(p []byte) (int, error) {
	select {}
}
