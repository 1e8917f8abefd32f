package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"auction-house/internal/models"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func handle(e *Engine, use string, args cobra.PositionalArgs, run HandlerFunc) {
	e.Handle(Command{Use: use, Short: "test command", Args: args, Run: run})
}

func TestEngine_ExecDispatch(t *testing.T) {
	e := New()

	var gotArgs []string
	handle(e, "echo <words...>", cobra.MinimumNArgs(1), func(c *Context) {
		gotArgs = c.Args
		c.Out.Write([]byte(strings.Join(c.Args, " ")))
	})

	var out bytes.Buffer
	c := e.Exec(context.Background(), "  ECHO hello   -world ", &out)
	require.NotNil(t, c)
	require.False(t, c.Failed(), out.String())
	require.Equal(t, "echo", c.Command)
	require.Equal(t, []string{"hello", "-world"}, gotArgs)
	require.Equal(t, "hello -world", out.String())
	require.Equal(t, "-world", c.Arg(1))
	require.Equal(t, "", c.Arg(5))
}

func TestEngine_BlankAndCommentLines(t *testing.T) {
	e := New()
	require.Nil(t, e.Exec(context.Background(), "   ", &bytes.Buffer{}))
	require.Nil(t, e.Exec(context.Background(), "# a comment", &bytes.Buffer{}))
}

func TestEngine_Rejections(t *testing.T) {
	e := New()
	called := false
	handle(e, "pair <a> <b>", cobra.ExactArgs(2), func(c *Context) { called = true })

	var out bytes.Buffer
	c := e.Exec(context.Background(), "frobnicate", &out)
	require.True(t, c.Failed())
	require.Empty(t, c.Usage)
	require.Contains(t, out.String(), `unknown command "frobnicate"`)

	var rejected []string
	e.Rejected(func(c *Context, err error) { rejected = append(rejected, c.Usage) })

	c = e.Exec(context.Background(), "pair one", &out)
	require.True(t, c.Failed())
	require.False(t, called)
	require.Equal(t, []string{"pair <a> <b>"}, rejected)

	c = e.Exec(context.Background(), "pair one two", &out)
	require.False(t, c.Failed())
	require.True(t, called)
}

func TestEngine_HookOrder(t *testing.T) {
	e := New()

	var trace []string
	e.Before(func(c *Context) error {
		trace = append(trace, "before")
		c.Set("seen", true)
		return nil
	})
	e.After(func(c *Context) {
		seen, _ := c.Get("seen")
		trace = append(trace, "after", c.Command)
		require.Equal(t, true, seen)
	})
	handle(e, "run", cobra.NoArgs, func(c *Context) { trace = append(trace, "handler") })

	e.Exec(context.Background(), "run", &bytes.Buffer{})
	require.Equal(t, []string{"before", "handler", "after", "run"}, trace)
}

func TestEngine_BeforeRejects(t *testing.T) {
	e := New()

	called := false
	e.Before(func(c *Context) error { return errors.New("closed") })
	handle(e, "run", cobra.NoArgs, func(c *Context) { called = true })

	var out bytes.Buffer
	c := e.Exec(context.Background(), "run", &out)
	require.True(t, c.Failed())
	require.False(t, called)
	require.Contains(t, out.String(), "closed")
}

func TestEngine_RecoverKeepsAfterHooks(t *testing.T) {
	e := New()

	var recovered any
	afterFailed := false
	e.Recover(func(c *Context, r any) {
		recovered = r
		c.Error(errors.New("panicked"))
	})
	e.After(func(c *Context) { afterFailed = c.Failed() })
	handle(e, "boom", cobra.NoArgs, func(c *Context) { panic("kaboom") })

	c := e.Exec(context.Background(), "boom", &bytes.Buffer{})
	require.Equal(t, "kaboom", recovered)
	require.True(t, c.Failed())
	require.True(t, afterFailed)
}

func TestEngine_Help(t *testing.T) {
	e := New()
	handle(e, "bid <item> <amount>", cobra.ExactArgs(2), func(*Context) {})
	handle(e, "lots", cobra.NoArgs, func(*Context) {})

	var out bytes.Buffer
	c := e.Exec(context.Background(), "help", &out)
	require.False(t, c.Failed())
	require.Contains(t, out.String(), "bid <item> <amount>")
	require.Contains(t, out.String(), "lots")

	out.Reset()
	e.Exec(context.Background(), "help bid", &out)
	require.Contains(t, out.String(), "Usage: bid <item> <amount>")
}

func TestEngine_SessionOwnedByEngine(t *testing.T) {
	e := New()
	handle(e, "login", cobra.NoArgs, func(c *Context) {
		c.SetSession(models.Session{ID: "s1", UserID: 1, Login: "alice", Role: models.RoleBidder})
	})
	handle(e, "logout", cobra.NoArgs, func(c *Context) { c.ClearSession() })

	var session models.Session
	var ok bool
	handle(e, "whoami", cobra.NoArgs, func(c *Context) { session, ok = c.Session() })

	e.Exec(context.Background(), "whoami", &bytes.Buffer{})
	require.False(t, ok)

	e.Exec(context.Background(), "login", &bytes.Buffer{})
	e.Exec(context.Background(), "whoami", &bytes.Buffer{})
	require.True(t, ok)
	require.Equal(t, "alice", session.Login)

	e.Exec(context.Background(), "logout", &bytes.Buffer{})
	e.Exec(context.Background(), "whoami", &bytes.Buffer{})
	require.False(t, ok)
}

func TestEngine_Run(t *testing.T) {
	e := New()

	var seen []string
	handle(e, "note <text>", cobra.ExactArgs(1), func(c *Context) { seen = append(seen, c.Arg(0)) })
	handle(e, "quit", cobra.NoArgs, func(c *Context) { c.Quit() })

	in := strings.NewReader("note a\n\nnote b\nquit\nnote c\n")
	var out bytes.Buffer
	require.NoError(t, e.Run(context.Background(), in, &out, "> "))
	require.Equal(t, []string{"a", "b"}, seen)
	require.Equal(t, 4, strings.Count(out.String(), "> "))

	// EOF ends the loop as well
	seen = nil
	require.NoError(t, e.Run(context.Background(), strings.NewReader("note z"), &out, ""))
	require.Equal(t, []string{"z"}, seen)
}

func TestEngine_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Run(ctx, strings.NewReader("anything\n"), &bytes.Buffer{}, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_RunCancelledWhileWaitingForInput(t *testing.T) {
	// the writer never sends a line, so the reader stays blocked
	r, w := io.Pipe()
	t.Cleanup(func() { w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- New().Run(ctx, r, io.Discard, "> ") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}
}

func TestEngine_Routes(t *testing.T) {
	e := New()
	handle(e, "b <x>", cobra.ExactArgs(1), func(*Context) {})
	handle(e, "a", cobra.NoArgs, func(*Context) {})

	require.Equal(t, []RouteInfo{{Name: "b", Usage: "b <x>"}, {Name: "a", Usage: "a"}}, e.Routes())
}
