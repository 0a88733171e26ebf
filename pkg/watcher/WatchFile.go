// Package watcher with a resilient file watcher for rotated credential and
// configuration files.
package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// changes within this window collapse into one callback
const debounceDelay = time.Millisecond * 100

// WatchFile invokes the handler when the given file changes.
// Special features:
//  1. Multiple quick changes debounce into a single callback, writers that
//     replace a file produce several events in a row
//  2. After the callback the file is watched again, as renames change the
//     inode and silently end the original watch
//
// Credential rotation replaces certificate files wholesale, which is exactly
// the rename case.
//
//	path of the file to watch
//	handler to invoke on change
//
// This returns the fsnotify watcher. Close it when done.
func WatchFile(path string, handler func() error) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// the callback timer debounces multiple changes to the file
	callbackTimer := time.AfterFunc(0, func() {
		logrus.Debugf("WatchFile: invoking callback for %s", path)
		handler()
		// file renames change the inode of the filename, watch again
		watcher.Remove(path)
		watcher.Add(path)
	})
	callbackTimer.Stop() // don't start yet

	err = watcher.Add(path)
	if err != nil {
		logrus.Errorf("WatchFile: unable to watch '%s' for changes: %s", path, err)
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// the kind of change doesn't matter, the handler reloads the file
				logrus.Debugf("WatchFile: event %s on %s", event.Op, event.Name)
				callbackTimer.Reset(debounceDelay)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logrus.Errorf("WatchFile: error watching %s: %s", path, err)
			}
		}
	}()
	return watcher, nil
}
