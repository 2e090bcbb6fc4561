package loader

// DefaultLoader transitions straight to Ready once the preload set (if
// any) has been dispatched. Most language servers (gopls, typescript's
// tsserver, pyright) don't require a separate solution-load signal before
// answering hover/definition/references for files already open.
type DefaultLoader struct {
	preloadCount int
}

// NewDefault builds a DefaultLoader. preloadURIs is the configured preload
// set; nil or empty means readiness is immediate after initialized.
func NewDefault(preloadURIs []string) *DefaultLoader {
	return &DefaultLoader{preloadCount: len(preloadURIs)}
}

func (d *DefaultLoader) Name() string { return "default" }

func (d *DefaultLoader) Initialize() State {
	return Loading
}

// UpdateState goes Loading -> Ready on "initialized" when there is nothing
// to preload, or once "preloadComplete" reports every preload open has
// been dispatched.
func (d *DefaultLoader) UpdateState(current State, event Event) State {
	switch current {
	case Uninitialized, Initializing, Loading:
		switch event.Name {
		case "initialized":
			if d.preloadCount == 0 {
				return Ready
			}
			return Loading
		case "preloadComplete":
			return Ready
		case "failed":
			return Failed
		}
	}
	return current
}

func (d *DefaultLoader) IsReady(state State) bool {
	return state == Ready
}
