// Package badge holds the surfaces the installation counter is painted on.
package badge

import (
	"strconv"
	"sync"

	"github.com/pkg/browser"
)

// Badge glyphs.
const (
	// Placeholder is shown before the first update.
	Placeholder = "..."

	// InFlight is shown while a request is outstanding.
	InFlight = "XHR"

	// Retrying is shown after a failed cycle while the retry is pending.
	Retrying = "..."

	// Unknown is shown when the counter cannot be determined and polling stopped.
	Unknown = "?"
)

// Surface is a short text label the user can click.
type Surface interface {
	SetText(text string) error
	OnClick(fn func())
}

// Opener opens a URL for the user.
type Opener interface {
	Open(url string) error
}

// Count renders a total the way the badge shows it.
func Count(total int) string {
	return strconv.Itoa(total)
}

// BrowserOpener opens URLs in a new tab of the default browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(url string) error {
	return browser.OpenURL(url)
}

// Recorder is an in-memory Surface that keeps every text it was given.
type Recorder struct {
	mu      sync.Mutex
	texts   []string
	onClick func()
}

func (r *Recorder) SetText(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func (r *Recorder) OnClick(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onClick = fn
}

// Click invokes the registered click handler, if any.
func (r *Recorder) Click() {
	r.mu.Lock()
	fn := r.onClick
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Texts returns a copy of the paint history.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// Text returns the current label, or "" if nothing was painted.
func (r *Recorder) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}
