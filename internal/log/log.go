// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// SHEETCTL_LOG env variable. Log lines go to stderr so they never mix with
// query output.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("SHEETCTL_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(&CustomHandler{Writer: os.Stderr})
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.ErrorLevel
	}
	log.SetLevel(lvl)
}

// CustomHandler formats log messages as a timestamp, a one letter level, the
// message and any fields in key order.
type CustomHandler struct {
	Writer io.Writer
	mu     sync.Mutex
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	level := strings.ToUpper(e.Level.String())

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", timestamp.Format("2006-01-02 15:04:05"), level, e.Message)
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.Writer
	if w == nil {
		w = os.Stderr
	}
	_, err := io.WriteString(w, b.String())
	return err
}
