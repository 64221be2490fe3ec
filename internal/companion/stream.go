package companion

import "strings"

// Event is an incremental signal produced while an assistant reply streams
// in. Concrete types: Started, Updated, Completed. Events are decoupled from
// any rendering target; renderers re-render the full accumulated text on
// each Updated so partial output is always well formed.
type Event interface {
	streamEvent()
}

// Started fires once per turn, on the first non-whitespace token. Callers
// use it to replace a pending indicator with live output.
type Started struct{}

// Updated carries the full accumulated text after a subsequent token.
type Updated struct {
	Text string
}

// Completed carries the final text. It fires only if Started fired.
type Completed struct {
	Text string
}

func (Started) streamEvent()   {}
func (Updated) streamEvent()   {}
func (Completed) streamEvent() {}

// EmitFunc receives stream events. A nil EmitFunc discards them.
type EmitFunc func(Event)

// Assembler materializes an assistant turn from a token stream. It holds the
// per-turn accumulation state and emits typed events as tokens arrive. One
// Assembler serves exactly one turn; it is not safe for concurrent use.
type Assembler struct {
	emit    EmitFunc
	text    strings.Builder
	started bool
}

// NewAssembler returns an assembler that reports progress through emit.
func NewAssembler(emit EmitFunc) *Assembler {
	if emit == nil {
		emit = func(Event) {}
	}
	return &Assembler{emit: emit}
}

// Feed consumes one token in arrival order. Empty and whitespace-only tokens
// are ignored entirely: not accumulated, no event. The first real token
// emits Started; every later one emits Updated with the accumulated text.
// Feed always returns nil; the signature matches TokenCallback.
func (a *Assembler) Feed(token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	a.text.WriteString(token)
	if !a.started {
		a.started = true
		a.emit(Started{})
		return nil
	}
	a.emit(Updated{Text: a.text.String()})
	return nil
}

// Finish ends the turn and returns the final accumulated text. Completed is
// emitted only if at least one real token arrived; a stream that produced
// nothing ends silently with "".
func (a *Assembler) Finish() string {
	final := a.text.String()
	if a.started {
		a.emit(Completed{Text: final})
	}
	return final
}

// Started reports whether any real token has arrived.
func (a *Assembler) Started() bool { return a.started }
