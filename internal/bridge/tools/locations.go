package tools

import (
	"encoding/json"

	"go.lsp.dev/protocol"
)

// decodeLocations normalizes a definition/typeDefinition/implementation
// response, which per LSP may be a single Location, a Location[], a
// LocationLink[], or null, into a flat []Location. LocationLink entries
// are reduced to their TargetRange/TargetURI, since the bridge boundary
// doesn't distinguish origin-selection-range from target-range.
func decodeLocations(raw json.RawMessage) ([]Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var single protocol.Location
	if err := json.Unmarshal(raw, &single); err == nil && single.URI != "" {
		return []Location{locationFromProtocol(single)}, nil
	}

	var list []protocol.Location
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 && list[0].URI != "" {
		out := make([]Location, 0, len(list))
		for _, l := range list {
			out = append(out, locationFromProtocol(l))
		}
		return out, nil
	}

	var links []protocol.LocationLink
	if err := json.Unmarshal(raw, &links); err == nil {
		out := make([]Location, 0, len(links))
		for _, l := range links {
			out = append(out, Location{
				URI:   string(l.TargetURI),
				Range: rangeFromProtocol(l.TargetRange).ToOneBased(),
			})
		}
		return out, nil
	}

	return nil, nil
}
