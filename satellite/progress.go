// Copyright 2023 Skypipe Authors <dev@skypipe.io>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package satellite

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// reporter emits a dotted progress line while a blocking step runs. It is
// purely cosmetic and never touches control flow.
type reporter struct {
	out      io.Writer
	interval time.Duration
	settle   time.Duration
}

func newReporter(out io.Writer) *reporter {
	return &reporter{
		out:      out,
		interval: time.Second,
		settle:   100 * time.Millisecond,
	}
}

// Start prints the label and begins writing dots on a background ticker
// until the returned task is stopped. The caller must stop the previous task
// before starting the next one.
func (r *reporter) Start(label string) *progressTask {
	task := &progressTask{
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		settle:   r.settle,
	}

	fmt.Fprint(r.out, label)

	go func() {
		defer close(task.finished)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-task.done:
				fmt.Fprintln(r.out)
				return
			case <-ticker.C:
				fmt.Fprint(r.out, ".")
			}
		}
	}()

	return task
}

type progressTask struct {
	done     chan struct{}
	finished chan struct{}
	settle   time.Duration
	stopOnce sync.Once
}

// Stop terminates the dot ticker, waits for its final newline, then pauses
// briefly so the next writer cannot interleave with it.
func (t *progressTask) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
		<-t.finished
		time.Sleep(t.settle)
	})
}
