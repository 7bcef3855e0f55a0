/**
 * Event source - hotkeys, root window property changes and environment
 * polling, delivered one at a time
 */

package desktopmonitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	workspaceswitcher "github.com/ln64-git/monitorspaces/src/features/workspace-switcher"
	"github.com/ln64-git/monitorspaces/src/utility"
)

// Listener receives desktop notifications. ActiveWorkspaceChanged and
// WindowActivatedWithFocus are delivered serially with every Do callback.
type Listener interface {
	ActiveWorkspaceChanged()
	WindowActivatedWithFocus(window workspaceswitcher.WindowHandle)
	ExtensionSetChanged()
}

// ChangeDetector reports whether the environment changed since the last call
type ChangeDetector interface {
	Changed(ctx context.Context) (bool, error)
}

// Hotkey binds a key string such as "Mod4-Mod1-Up" to an action
type Hotkey struct {
	Name    string
	Keys    string
	Handler func()
}

// EventSource turns X events into Listener calls
type EventSource struct {
	logger   *utility.Logger
	conn     *Connection
	listener Listener
	detector ChangeDetector
	interval time.Duration

	activeWindow    func() (xproto.Window, error)
	windowFor       func(xproto.Window) workspaceswitcher.WindowHandle
	refreshDisplays func()
	lastActive      xproto.Window

	commands  chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventSource wires the source to platform and listener. detector may be
// nil to disable environment polling.
func NewEventSource(logger *utility.Logger, conn *Connection, platform *CompositorMonitor, listener Listener, detector ChangeDetector, interval time.Duration) *EventSource {
	if logger == nil {
		logger = utility.GetLogger()
	}
	return &EventSource{
		logger:          logger,
		conn:            conn,
		listener:        listener,
		detector:        detector,
		interval:        interval,
		activeWindow:    platform.ActiveWindow,
		windowFor:       platform.Window,
		refreshDisplays: platform.displays.Refresh,
		commands:        make(chan func()),
		done:            make(chan struct{}),
	}
}

// BindHotkeys grabs every hotkey on the root window
func (es *EventSource) BindHotkeys(hotkeys ...Hotkey) error {
	keybind.Initialize(es.conn.X)

	for _, hk := range hotkeys {
		hk := hk
		err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
			es.logger.Debug("hotkey %s (%s)", hk.Name, hk.Keys)
			es.refresh()
			hk.Handler()
		}).Connect(es.conn.X, es.conn.Root, hk.Keys, true)
		if err != nil {
			return fmt.Errorf("bind %s to %q: %w", hk.Name, hk.Keys, err)
		}
		es.logger.Info("Bound %s to %s", hk.Name, hk.Keys)
	}
	return nil
}

// Run processes events until ctx is cancelled or Close is called
func (es *EventSource) Run(ctx context.Context) error {
	if err := xwindow.New(es.conn.X, es.conn.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("listen on root window: %w", err)
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		es.dispatchProperty(name)
	}).Connect(es.conn.X, es.conn.Root)

	if active, err := es.activeWindow(); err == nil {
		es.lastActive = active
	}

	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()
	if es.detector != nil && es.interval > 0 {
		go es.pollEnvironment(pollCtx)
	}

	// X callbacks run between pingBefore and pingAfter, so they never
	// overlap with commands.
	pingBefore, pingAfter, pingQuit := xevent.MainPing(es.conn.X)
	es.logger.Info("Listening for workspace changes")

	for {
		select {
		case <-pingBefore:
			<-pingAfter
		case f := <-es.commands:
			f()
		case <-ctx.Done():
			es.Close()
			return nil
		case <-es.done:
			return nil
		case <-pingQuit:
			return nil
		}
	}
}

// Do runs f on the event loop, blocking until the loop accepts it. It returns
// false once the source is closed.
func (es *EventSource) Do(f func()) bool {
	select {
	case es.commands <- f:
		return true
	case <-es.done:
		return false
	}
}

// Close detaches every handler and stops the loop. Idempotent.
func (es *EventSource) Close() {
	es.closeOnce.Do(func() {
		keybind.Detach(es.conn.X, es.conn.Root)
		xevent.Detach(es.conn.X, es.conn.Root)
		xevent.Quit(es.conn.X)
		close(es.done)
		es.logger.Debug("event source closed")
	})
}

// dispatchProperty handles a root property change. The focus hint is only
// delivered for an activation that came with a desktop change, right before
// resync consumes it.
func (es *EventSource) dispatchProperty(name string) {
	switch name {
	case "_NET_ACTIVE_WINDOW":
		if active, ok := es.readActive(); ok {
			es.lastActive = active
		}
	case "_NET_CURRENT_DESKTOP":
		es.refresh()
		if active, ok := es.readActive(); ok && active != es.lastActive {
			es.lastActive = active
			es.listener.WindowActivatedWithFocus(es.windowFor(active))
		}
		es.listener.ActiveWorkspaceChanged()
	case "_NET_NUMBER_OF_DESKTOPS":
		es.logger.Debug("desktop count changed")
	}
}

func (es *EventSource) refresh() {
	if es.refreshDisplays != nil {
		es.refreshDisplays()
	}
}

func (es *EventSource) readActive() (xproto.Window, bool) {
	active, err := es.activeWindow()
	if err != nil || active == 0 {
		return 0, false
	}
	return active, true
}

func (es *EventSource) pollEnvironment(ctx context.Context) {
	ticker := time.NewTicker(es.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-es.done:
			return
		case <-ticker.C:
			changed, err := es.detector.Changed(ctx)
			if err != nil {
				es.logger.Debug("environment poll: %v", err)
				continue
			}
			if changed {
				es.listener.ExtensionSetChanged()
			}
		}
	}
}
