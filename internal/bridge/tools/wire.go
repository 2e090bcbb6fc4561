package tools

import (
	"go.lsp.dev/protocol"

	"github.com/p1va/lspbridge/internal/bridge/position"
)

func rangeFromProtocol(r protocol.Range) position.ZeroBasedRange {
	return position.ZeroBasedRange{
		Start: position.ZeroBased{Line: int(r.Start.Line), Character: int(r.Start.Character)},
		End:   position.ZeroBased{Line: int(r.End.Line), Character: int(r.End.Character)},
	}
}

func rangeToProtocol(r position.ZeroBasedRange) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
	}
}

func locationFromProtocol(l protocol.Location) Location {
	return Location{
		URI:   string(l.URI),
		Range: rangeFromProtocol(l.Range).ToOneBased(),
	}
}

// textDocumentIdentifier builds the textDocument field embedded in every
// document-addressed LSP request.
func textDocumentIdentifier(uri protocol.DocumentURI) protocol.TextDocumentIdentifier {
	return protocol.TextDocumentIdentifier{URI: uri}
}

func positionToProtocol(p position.ZeroBased) protocol.Position {
	return protocol.Position{Line: uint32(p.Line), Character: uint32(p.Character)}
}
