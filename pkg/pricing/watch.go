package pricing

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/dipampaul17/AgentGuard/pkg/telemetry/logging"
)

// OverrideWatcher watches a local YAML price file and merges it into the
// table whenever it changes. It lets operators pin or correct prices without
// waiting for a remote refresh.
//
// The file maps model identifiers to entries:
//
//	gpt-4:
//	  input: 0.03
//	  output: 0.06
type OverrideWatcher struct {
	table   *Table
	path    string
	watcher *fsnotify.Watcher
	logger  *logging.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatchOverrides starts watching path and merging it into the table. The
// file is loaded once immediately if it exists. Call Stop to release the
// watcher.
func WatchOverrides(table *Table, path string, logger *logging.Logger) (*OverrideWatcher, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory rather than the file so editor rename-on-save
	// does not detach the watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	ow := &OverrideWatcher{
		table:   table,
		path:    path,
		watcher: watcher,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	ow.load()
	go ow.run()

	return ow, nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (ow *OverrideWatcher) Stop() {
	close(ow.stopCh)
	ow.watcher.Close()
	<-ow.doneCh
}

// run is the event loop. Writes are debounced so editors that emit several
// events per save trigger a single reload.
func (ow *OverrideWatcher) run() {
	defer close(ow.doneCh)

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ow.stopCh:
			return

		case event, ok := <-ow.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(ow.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(100 * time.Millisecond)
			} else {
				debounce.Reset(100 * time.Millisecond)
			}
			debounceCh = debounce.C

		case <-debounceCh:
			debounceCh = nil
			ow.load()

		case err, ok := <-ow.watcher.Errors:
			if !ok {
				return
			}
			ow.logger.Warn("price override watcher error", "error", err)
		}
	}
}

// load parses the override file and merges it. Parse failures keep the
// current table.
func (ow *OverrideWatcher) load() {
	data, err := os.ReadFile(ow.path)
	if err != nil {
		if !os.IsNotExist(err) {
			ow.logger.Warn("failed to read price overrides", "path", ow.path, "error", err)
		}
		return
	}

	var overrides map[string]Entry
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		ow.logger.Warn("failed to parse price overrides, keeping existing table",
			"path", ow.path, "error", err)
		return
	}

	ow.table.Merge(overrides)
	ow.logger.Debug("merged price overrides", "path", ow.path, "entries", len(overrides))
}
