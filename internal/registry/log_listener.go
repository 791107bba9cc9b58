package registry

import (
	"log"

	"github.com/legoev3/uartengine/internal/engine"
)

// LogListener reports lifecycle events through a plain *log.Logger,
// matching the rest of this codebase's logging: no structured fields,
// just a formatted line per event.
type LogListener struct {
	logger *log.Logger
}

// NewLogListener returns a LogListener. A nil logger defaults to
// log.Default().
func NewLogListener(logger *log.Logger) *LogListener {
	if logger == nil {
		logger = log.Default()
	}
	return &LogListener{logger: logger}
}

func (l *LogListener) OnAttach(h *engine.Handle) {
	l.logger.Printf("registry: sensor attached (type=%d modes=%d)", h.Type(), len(h.Modes()))
}

func (l *LogListener) OnDetach(h *engine.Handle) {
	l.logger.Printf("registry: sensor detached (type=%d)", h.Type())
}

func (l *LogListener) OnModeChange(h *engine.Handle, mode uint8) {
	l.logger.Printf("registry: sensor (type=%d) mode changed to %d", h.Type(), mode)
}

func (l *LogListener) OnSample(h *engine.Handle, mode uint8) {
	// Sample-rate events are deliberately not logged; they would flood
	// the log at the sensor's DATA cadence.
}
