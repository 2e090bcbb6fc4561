package session

import (
	"context"
	"encoding/json"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/p1va/lspbridge/internal/bridge/loader"
	"github.com/p1va/lspbridge/internal/bridge/position"
	"github.com/p1va/lspbridge/internal/bridge/store"
)

// methodTextDocumentDiagnostic mirrors the constant of the same name in
// internal/bridge/tools — kept unexported there, so the literal is
// repeated here rather than exporting a tools-package symbol purely for
// this one comparison.
const methodTextDocumentDiagnostic = "textDocument/diagnostic"

func rangeFromProtocol(r protocol.Range) position.ZeroBasedRange {
	return position.ZeroBasedRange{
		Start: position.ZeroBased{Line: int(r.Start.Line), Character: int(r.Start.Character)},
		End:   position.ZeroBased{Line: int(r.End.Line), Character: int(r.End.Character)},
	}
}

func codeToString(code interface{}) string {
	if code == nil {
		return ""
	}
	if str, ok := code.(string); ok {
		return str
	}
	b, err := json.Marshal(code)
	if err != nil {
		return ""
	}
	return string(b)
}

// registerHandlers wires every inbound notification and request this
// session answers (§6 language-server surface, inbound side).
func (s *Session) registerHandlers() {
	s.transport.OnNotification(protocol.MethodTextDocumentPublishDiagnostics, s.handlePublishDiagnostics)
	s.transport.OnNotification(protocol.MethodWindowLogMessage, s.handleLogMessage)
	s.transport.OnNotification(protocol.MethodWindowShowMessage, s.handleShowMessage)
	s.transport.OnNotification("workspace/projectInitializationComplete", s.handleProjectInitializationComplete)

	s.transport.OnRequest("client/registerCapability", s.handleRegisterCapability)
}

func (s *Session) handlePublishDiagnostics(params json.RawMessage) {
	var p protocol.PublishDiagnosticsParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Warn("malformed publishDiagnostics params", zap.Error(err))
		return
	}

	diags := make([]store.Diagnostic, 0, len(p.Diagnostics))
	for _, d := range p.Diagnostics {
		diags = append(diags, store.Diagnostic{
			Range:    rangeFromProtocol(d.Range),
			Severity: store.DiagnosticSeverity(d.Severity),
			Code:     codeToString(d.Code),
			Source:   d.Source,
			Message:  d.Message,
		})
	}
	s.diagnostics.Set(string(p.URI), diags)
}

func (s *Session) handleLogMessage(params json.RawMessage) {
	var p protocol.LogMessageParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Warn("malformed logMessage params", zap.Error(err))
		return
	}
	s.recordServerMessage(p.Type, p.Message)
}

func (s *Session) handleShowMessage(params json.RawMessage) {
	var p protocol.ShowMessageParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Warn("malformed showMessage params", zap.Error(err))
		return
	}
	s.recordServerMessage(p.Type, p.Message)
}

// recordServerMessage appends the message to the log ring and, since
// vendor loader-readiness toasts arrive exactly this way (§4.4), also
// feeds it to the workspace loader as a vendorToast event. A variant that
// doesn't care about toasts (the Default loader) simply ignores the event.
func (s *Session) recordServerMessage(level protocol.MessageType, message string) {
	s.logRing.Append(store.LogLevel(level), message, time.Now())
	s.ld.Transition(loader.Event{Name: "vendorToast", Payload: message})
}

func (s *Session) handleProjectInitializationComplete(_ json.RawMessage) {
	s.ld.Transition(loader.Event{Name: "projectInitializationComplete"})
}

// registrationParams mirrors the subset of client/registerCapability this
// session acts on: dynamic registration of pull-diagnostics support.
type registrationParams struct {
	Registrations []struct {
		ID             string          `json:"id"`
		Method         string          `json:"method"`
		RegisterOptions json.RawMessage `json:"registerOptions"`
	} `json:"registrations"`
}

type diagnosticRegistrationOptions struct {
	InterFileDependencies bool `json:"interFileDependencies"`
	WorkspaceDiagnostics  bool `json:"workspaceDiagnostics"`
}

func (s *Session) handleRegisterCapability(_ context.Context, params json.RawMessage) (interface{}, error) {
	var p registrationParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Warn("malformed registerCapability params", zap.Error(err))
		return nil, nil
	}

	for _, reg := range p.Registrations {
		if reg.Method != methodTextDocumentDiagnostic {
			continue
		}
		var opts diagnosticRegistrationOptions
		if len(reg.RegisterOptions) > 0 {
			_ = json.Unmarshal(reg.RegisterOptions, &opts)
		}
		s.providers.Add(store.DiagnosticProvider{
			ID:                    reg.ID,
			InterFileDependencies: opts.InterFileDependencies,
			WorkspaceDiagnostics:  opts.WorkspaceDiagnostics,
		})
	}

	return nil, nil
}
