package importer

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch follows the import directory and triggers a rescan shortly after new
// files land. Bursts of filesystem events collapse into a single debounced
// rescan.
func (i *Importer) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(i.dir); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		debounce := time.NewTimer(0)
		if !debounce.Stop() {
			<-debounce.C
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					if !debounce.Stop() {
						select {
						case <-debounce.C:
						default:
						}
					}
					debounce.Reset(250 * time.Millisecond)
				}
			case <-debounce.C:
				if n, err := i.Rescan(ctx); err != nil {
					slog.Error("import rescan failed", "err", err)
				} else if n > 0 {
					slog.Info("import rescan", "imported", n)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Error("watch error", "err", err)
			}
		}
	}()
	return nil
}
