// Copyright 2025 ByteDance Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package utils

import (
	"github.com/cloudwego/gencoder/internal/log"
	"github.com/fsnotify/fsnotify"
)

// WatchDir calls cb for every event under dir until the returned stop
// function is called. A watch that cannot be set up is logged and a no-op
// stop is returned, so callers degrade to reading from disk.
func WatchDir(dir string, cb func(op fsnotify.Op, file string)) (stop func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("create watcher for %s failed: %v", dir, err)
		return func() {}
	}
	if err := watcher.Add(dir); err != nil {
		log.Error("watch %s failed: %v", dir, err)
		_ = watcher.Close()
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				log.Debug("watch %s: %s %s", dir, ev.Op, ev.Name)
				cb(ev.Op, ev.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("watch %s: %v", dir, err)
			}
		}
	}()
	return func() {
		_ = watcher.Close()
		<-done
	}
}
