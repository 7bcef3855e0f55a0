package workspaceswitcher

// Switcher is the operation the hotkeys drive
type Switcher interface {
	DirectedSwitch(direction Direction) error
}

// Controller maps the two hotkeys onto directed switches
type Controller struct {
	switcher Switcher
}

func NewController(switcher Switcher) *Controller {
	return &Controller{switcher: switcher}
}

// Up switches the focused monitor to the previous workspace
func (c *Controller) Up() error {
	return c.switcher.DirectedSwitch(Up)
}

// Down switches the focused monitor to the next workspace
func (c *Controller) Down() error {
	return c.switcher.DirectedSwitch(Down)
}

// Switch dispatches by direction
func (c *Controller) Switch(direction Direction) error {
	switch direction {
	case Up:
		return c.Up()
	case Down:
		return c.Down()
	default:
		return c.switcher.DirectedSwitch(direction)
	}
}
