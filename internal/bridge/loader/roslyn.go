package loader

import "strings"

// vendorReadyToasts lists substrings of window/showMessage / window/logMessage
// text that Roslyn-family servers are known to emit once solution load has
// completed, for installations that predate the projectInitializationComplete
// notification.
var vendorReadyToasts = []string{
	"project initialization complete",
	"solution load complete",
	"workspace is fully loaded",
}

// RoslynLoader remains Loading until either the dedicated
// workspace/projectInitializationComplete notification arrives, or a
// vendor-specific toast indicating solution load completion is observed.
// Until then, workspace-symbol search (tools.Search) fails with
// WorkspaceLoadInProgress. Opening documents is not gated by the loader:
// document.Manager.Open does not consult readiness, for preloaded and
// non-preloaded files alike.
type RoslynLoader struct{}

// NewRoslyn builds a RoslynLoader.
func NewRoslyn() *RoslynLoader {
	return &RoslynLoader{}
}

func (r *RoslynLoader) Name() string { return "csharp-roslyn" }

func (r *RoslynLoader) Initialize() State {
	return Loading
}

func (r *RoslynLoader) UpdateState(current State, event Event) State {
	switch current {
	case Uninitialized, Initializing, Loading:
		switch event.Name {
		case "projectInitializationComplete":
			return Ready
		case "vendorToast":
			if isReadyToast(event.Payload) {
				return Ready
			}
		case "failed":
			return Failed
		}
	}
	return current
}

func (r *RoslynLoader) IsReady(state State) bool {
	return state == Ready
}

func isReadyToast(text string) bool {
	lower := strings.ToLower(text)
	for _, toast := range vendorReadyToasts {
		if strings.Contains(lower, toast) {
			return true
		}
	}
	return false
}
