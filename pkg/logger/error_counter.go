package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// ErrorCounter hook de zerolog que cuenta los eventos de nivel error o superior,
// agrupados por mensaje (la etapa, p. ej. "mapping-error"). Seguro para uso concurrente.
type ErrorCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

var _ zerolog.Hook = (*ErrorCounter)(nil)

// NewErrorCounter crea un contador vacío.
func NewErrorCounter() *ErrorCounter {
	return &ErrorCounter{counts: make(map[string]int64)}
}

// Run incrementa el contador y adjunta la instantánea al evento como error_counts.
func (c *ErrorCounter) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level < zerolog.ErrorLevel || level > zerolog.PanicLevel {
		return
	}
	key := msg
	if key == "" {
		key = "unknown"
	}
	c.mu.Lock()
	c.counts[key]++
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	e.Interface("error_counts", snapshot)
}

// Snapshot copia de los contadores actuales.
func (c *ErrorCounter) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Reset pone los contadores a cero.
func (c *ErrorCounter) Reset() {
	c.mu.Lock()
	c.counts = make(map[string]int64)
	c.mu.Unlock()
}

func (c *ErrorCounter) snapshotLocked() map[string]int64 {
	out := make(map[string]int64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}
