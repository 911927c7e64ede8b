// SPDX-License-Identifier: MIT

package diag

import "go.uber.org/zap"

// Collector accumulates diagnostics in emission order.
// The zero value is ready to use.
type Collector struct {
	events []Diagnostic
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector { return &Collector{} }

// Emit appends d to the collected list.
func (c *Collector) Emit(d Diagnostic) { c.events = append(c.events, d) }

// All returns the collected diagnostics in emission order.
func (c *Collector) All() []Diagnostic { return c.events }

// Has reports whether any collected diagnostic carries the given code.
func (c *Collector) Has(code Code) bool {
	for _, d := range c.events {
		if d.Code == code {
			return true
		}
	}

	return false
}

// Find returns the first diagnostic with the given code, or nil.
func (c *Collector) Find(code Code) *Diagnostic {
	for i := range c.events {
		if c.events[i].Code == code {
			return &c.events[i]
		}
	}

	return nil
}

// Reset drops all collected diagnostics.
func (c *Collector) Reset() { c.events = c.events[:0] }

// discard is the no-op sink.
type discard struct{}

func (discard) Emit(Diagnostic) {}

// Discard drops every diagnostic. Library entry points default to it so
// that callers opt in to observation explicitly.
var Discard Sink = discard{}

// ZapSink routes diagnostics into a zap logger: Warning severity logs at
// Warn level, everything else at Info, with the code as a structured field.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink wraps a zap logger. A nil logger falls back to zap.NewNop().
func NewZapSink(log *zap.Logger) *ZapSink {
	if log == nil {
		log = zap.NewNop()
	}

	return &ZapSink{log: log}
}

// Emit logs d at the level matching its severity.
func (s *ZapSink) Emit(d Diagnostic) {
	if d.Severity == Warning {
		s.log.Warn(d.Message, zap.String("code", string(d.Code)))
		return
	}
	s.log.Info(d.Message, zap.String("code", string(d.Code)))
}
