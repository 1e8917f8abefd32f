package server

import (
	"fmt"
	"time"

	"auction-house/internal/console"
	"auction-house/utils"
)

const startKey = "start"

// StartTimer records when a command started
func StartTimer(c *console.Context) error {
	c.Set(startKey, time.Now())
	return nil
}

// CommandLoggerMiddleware logs executed commands with timing. Arguments are
// left out since they may carry passwords.
func CommandLoggerMiddleware(c *console.Context) {
	fields := map[string]any{
		"command": c.Command,
		"args":    len(c.Args),
		"failed":  c.Failed(),
	}
	if start, ok := c.Get(startKey); ok {
		fields["latency"] = time.Since(start.(time.Time)).String()
	}
	if session, ok := c.Session(); ok {
		fields["user_id"] = session.UserID
	}
	utils.Info("Console Command", fields)
}

// Recovery turns a handler panic into an error reply so the session survives
func Recovery(c *console.Context, recovered any) {
	err := fmt.Errorf("panic: %v", recovered)
	utils.Error("Recovered from panic", map[string]any{"command": c.Command, "error": err.Error()})
	utils.RespondError(c, err, "internal error")
}

// RejectedCommand answers lines that matched no command or had the wrong
// number of arguments
func RejectedCommand(c *console.Context, err error) {
	message := err.Error()
	if c.Usage != "" {
		message = "invalid arguments, usage: " + c.Usage
	}

	fmt.Fprintf(c.Out, "error: %s\n", message)
	if c.Usage != "" {
		fmt.Fprintf(c.Out, "  detail: %s\n", err.Error())
	}
	utils.Warn("Rejected Command", map[string]any{"command": c.Command, "error": err.Error()})
}
