package sim

import (
	"context"

	"github.com/Versifine/locomotor/internal/config"
	"github.com/Versifine/locomotor/internal/logger"
)

// WatchTuning reloads the config file on every change reported by w and
// hands valid tuning to the simulation goroutine. The log level follows
// the file too. It returns when ctx is canceled or w is closed.
func (r *Runner) WatchTuning(ctx context.Context, w *config.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			r.reload(path)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			r.log.Warn("Config watcher error", "error", err)
		}
	}
}

func (r *Runner) reload(path string) {
	cfg, err := config.LoadTuning(path)
	if err != nil {
		r.log.Warn("Ignoring config change", "path", path, "error", err)
		return
	}
	logger.SetLevel(cfg.Logging.Level)
	r.Do(func(r *Runner) {
		if err := r.ApplyTuning(path, cfg); err != nil {
			r.log.Warn("Failed to apply tuning", "path", path, "error", err)
		}
	})
}
