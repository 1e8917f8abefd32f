package console

import (
	"context"
	"io"

	"auction-house/internal/models"
)

// Context carries one command line through the hooks and its handler
type Context struct {
	Command string
	Args    []string
	Out     io.Writer
	Errors  []error

	// Usage is the usage line of the matched command when it was rejected
	Usage string

	ctx    context.Context
	engine *Engine
	keys   map[string]any
}

// Context returns the context.Context the command runs under
func (c *Context) Context() context.Context {
	return c.ctx
}

// Set stores a value for later hooks of the same command
func (c *Context) Set(key string, value any) {
	if c.keys == nil {
		c.keys = make(map[string]any)
	}
	c.keys[key] = value
}

// Get returns a value stored with Set
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.keys[key]
	return v, ok
}

// Error records err against the command
func (c *Context) Error(err error) {
	c.Errors = append(c.Errors, err)
}

// Failed reports whether any error was recorded
func (c *Context) Failed() bool {
	return len(c.Errors) > 0
}

// Arg returns the i-th argument or "" when absent
func (c *Context) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Session returns the logged in session, if any
func (c *Context) Session() (models.Session, bool) {
	if c.engine.session == nil {
		return models.Session{}, false
	}
	return *c.engine.session, true
}

// SetSession replaces the logged in session
func (c *Context) SetSession(s models.Session) {
	c.engine.session = &s
}

// ClearSession logs the current user out
func (c *Context) ClearSession() {
	c.engine.session = nil
}

// Quit makes Run return after this command
func (c *Context) Quit() {
	c.engine.quit = true
}
