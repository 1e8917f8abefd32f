package utils

import (
	"fmt"

	"auction-house/internal/console"
)

// Respond writes a success message followed by one indented line per row
func Respond(c *console.Context, message string, rows ...string) {
	fmt.Fprintf(c.Out, "ok: %s\n", message)
	for _, row := range rows {
		fmt.Fprintf(c.Out, "  %s\n", row)
	}
}

// RespondError writes a structured error message and records err on the command
func RespondError(c *console.Context, err error, message string) {
	c.Error(err)
	fmt.Fprintf(c.Out, "error: %s\n", message)
	fmt.Fprintf(c.Out, "  detail: %s\n", err.Error())
}
