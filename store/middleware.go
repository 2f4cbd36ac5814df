package store

import (
	"time"

	"github.com/hupe1980/chatstore/core"
	"github.com/hupe1980/chatstore/logging"
)

// LoggingMiddleware logs every write with its label, the fields it carries and
// the time spent committing and notifying.
func LoggingMiddleware(logger logging.Logger) Middleware {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return func(next SetFunc) SetFunc {
		return func(patch core.Patch, replace bool, label string) {
			start := time.Now()
			next(patch, replace, label)
			logger.Debug("store.write",
				"label", label,
				"replace", replace,
				"fields", patch.Fields,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
	}
}

// ValidateStatus drops writes that carry an unknown status and reports them
// through logger.
func ValidateStatus(logger logging.Logger) Middleware {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return func(next SetFunc) SetFunc {
		return func(patch core.Patch, replace bool, label string) {
			if patch.Fields.Has(core.FieldStatus) && !patch.Values.Status.Valid() {
				logger.Warn("store.write.rejected", "label", label, "status", string(patch.Values.Status))
				return
			}
			next(patch, replace, label)
		}
	}
}
