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
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"time"
)

// Satellite wire greeting. A listener that answers anything else is not a
// skypipe satellite.
const (
	probeGreeting = "SKYPIPE/1 PING\n"
	probeReply    = "SKYPIPE/1 PONG"
)

// probeRetryInterval is the pause between handshake attempts while the
// deadline has not passed. Overridden in tests.
var probeRetryInterval = time.Second

// ProbeFunc checks whether a compatible satellite answers at endpoint within
// timeout. Implementations report a verdict, never an error.
type ProbeFunc func(ctx context.Context, endpoint string, timeout time.Duration) bool

// Probe dials the endpoint and performs the satellite greeting handshake. It
// keeps attempting until timeout elapses: a satellite that is still booting
// refuses connections, so a failed dial is not a final answer. A completed
// handshake with the wrong reply is final and reports false immediately.
func Probe(ctx context.Context, endpoint string, timeout time.Duration) bool {
	address := strings.TrimPrefix(endpoint, "tcp://")
	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}

		ok, final := handshake(ctx, address, remaining)
		if ok || final {
			return ok
		}

		pause := probeRetryInterval
		if pause > remaining {
			pause = remaining
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(pause):
		}
	}
}

func handshake(ctx context.Context, address string, remaining time.Duration) (ok bool, final bool) {
	dialer := net.Dialer{Timeout: remaining}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return false, false
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(remaining)); err != nil {
		return false, false
	}

	if _, err := io.WriteString(conn, probeGreeting); err != nil {
		return false, false
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return false, false
	}

	// The listener answered. Whatever it said is the verdict.
	return strings.TrimSpace(reply) == probeReply, true
}
