/**
 * X connection shared by the platform, display monitor and event source
 */

package desktopmonitor

import (
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/ln64-git/monitorspaces/src/utility"
)

// Connection wraps the X connection and root window
type Connection struct {
	X        *xgbutil.XUtil
	Root     xproto.Window
	xinerama bool

	logger    *utility.Logger
	closeOnce sync.Once
}

// Connect opens the display named by $DISPLAY
func Connect(logger *utility.Logger) (*Connection, error) {
	if logger == nil {
		logger = utility.GetLogger()
	}
	if os.Getenv("DISPLAY") == "" {
		return nil, ErrNoDisplay
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}

	c := &Connection{
		X:      xu,
		Root:   xu.RootWin(),
		logger: logger,
	}

	if err := xinerama.Init(xu.Conn()); err != nil {
		logger.Warn("Xinerama unavailable, treating the screen as a single monitor: %v", err)
	} else {
		c.xinerama = true
	}

	return c, nil
}

// Close closes the X connection. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.X.Conn().Close()
	})
}
