package badge

import (
	"github.com/energye/systray"
	"github.com/pterm/pterm"
)

// Tray paints the badge as the system tray title.
type Tray struct {
	tooltip string
}

// NewTray returns a tray surface. It must only be used after RunTray's
// onReady callback fired.
func NewTray(tooltip string) *Tray {
	return &Tray{tooltip: tooltip}
}

func (t *Tray) SetText(text string) error {
	systray.SetTitle(text)
	systray.SetTooltip(t.tooltip + ": " + text)
	return nil
}

func (t *Tray) OnClick(fn func()) {
	systray.SetOnClick(func(menu systray.IMenu) {
		fn()
	})
}

// AddQuit adds a quit entry to the tray menu.
func (t *Tray) AddQuit(onQuit func()) {
	item := systray.AddMenuItem("Quit", "Stop the installation counter")
	item.Click(onQuit)
	systray.SetOnRClick(func(menu systray.IMenu) {
		showMenu(menu)
	})
}

type menuShower interface {
	ShowMenu() error
}

func showMenu(m menuShower) {
	if err := m.ShowMenu(); err != nil {
		pterm.Warning.Printfln("Could not show the tray menu: %v", err)
	}
}

// RunTray runs the tray event loop on the calling goroutine until QuitTray.
func RunTray(onReady, onExit func()) {
	systray.Run(onReady, onExit)
}

// QuitTray ends the loop started by RunTray.
func QuitTray() {
	systray.Quit()
}
