package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"auction-house/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func init() {
	cobra.EnableCaseInsensitive = true
	cobra.EnableCommandSorting = false
}

const usageTemplate = `{{if .HasAvailableSubCommands}}Commands:{{range .Commands}}{{if .IsAvailableCommand}}
  {{rpad .Use 40}}{{.Short}}{{end}}{{end}}{{else}}Usage: {{.Use}}{{end}}
`

// HandlerFunc handles one console command
type HandlerFunc func(*Context)

// Command describes a console verb. Use starts with the verb name and is
// shown as the usage line.
type Command struct {
	Use   string
	Short string
	Args  cobra.PositionalArgs
	Run   HandlerFunc
}

// RouteInfo describes a registered command
type RouteInfo struct {
	Name  string
	Usage string
}

// Engine runs command lines through a cobra command tree. It owns the session
// of the user working at the console.
type Engine struct {
	root *cobra.Command

	before   []func(*Context) error
	after    []HandlerFunc
	onPanic  func(*Context, any)
	rejected func(*Context, error)

	current *Context
	session *models.Session
	quit    bool
}

// New returns an engine without commands or hooks
func New() *Engine {
	e := &Engine{
		rejected: func(c *Context, err error) { fmt.Fprintf(c.Out, "error: %v\n", err) },
	}

	e.root = &cobra.Command{
		Use:           "auction",
		Short:         "Auction house console",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			for _, h := range e.before {
				if err := h(e.current); err != nil {
					return err
				}
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			for _, h := range e.after {
				h(e.current)
			}
		},
	}
	e.root.CompletionOptions.DisableDefaultCmd = true
	e.root.SetUsageTemplate(usageTemplate)
	return e
}

// Before adds a hook run ahead of every command; an error rejects the command
func (e *Engine) Before(hook func(*Context) error) {
	e.before = append(e.before, hook)
}

// After adds a hook run once a command handler returned
func (e *Engine) After(hook HandlerFunc) {
	e.after = append(e.after, hook)
}

// Recover sets the handler for panics raised by command handlers
func (e *Engine) Recover(handler func(*Context, any)) {
	e.onPanic = handler
}

// Rejected sets the handler for lines that never reach a command handler:
// unknown commands, wrong argument counts and failing Before hooks
func (e *Engine) Rejected(handler func(*Context, error)) {
	e.rejected = handler
}

// Handle registers a command
func (e *Engine) Handle(cmd Command) {
	run := cmd.Run
	e.root.AddCommand(&cobra.Command{
		Use:                cmd.Use,
		Short:              cmd.Short,
		Args:               cmd.Args,
		DisableFlagParsing: true, // "bid 1 -5" and item names are plain words
		Run: func(_ *cobra.Command, args []string) {
			c := e.current
			c.Args = args
			if e.onPanic != nil {
				defer func() {
					if r := recover(); r != nil {
						e.onPanic(c, r)
					}
				}()
			}
			run(c)
		},
	})
}

// Routes lists the registered commands in registration order
func (e *Engine) Routes() []RouteInfo {
	var infos []RouteInfo
	for _, cmd := range e.root.Commands() {
		if !cmd.IsAvailableCommand() {
			continue
		}
		infos = append(infos, RouteInfo{Name: cmd.Name(), Usage: cmd.Use})
	}
	return infos
}

// Exec runs a single command line and returns its context. Blank lines and
// lines starting with '#' return nil.
func (e *Engine) Exec(ctx context.Context, line string, out io.Writer) *Context {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	c := &Context{
		Command: strings.ToLower(fields[0]),
		Args:    fields[1:],
		Out:     out,
		ctx:     ctx,
		engine:  e,
	}
	e.current = c
	defer func() {
		e.current = nil
		resetFlags(e.root)
	}()

	e.root.SetArgs(fields)
	e.root.SetOut(out)
	e.root.SetErr(out)

	cmd, err := e.root.ExecuteContextC(ctx)
	if err != nil {
		if cmd != nil && cmd != e.root {
			c.Usage = cmd.Use
		}
		c.Error(err)
		e.rejected(c, err)
	}
	return c
}

// Run reads command lines from in until EOF, a quit command or ctx is done.
// Cancelling ctx returns at once, even while waiting for input.
func (e *Engine) Run(ctx context.Context, in io.Reader, out io.Writer, prompt string) error {
	e.quit = false

	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for !e.quit {
		if err := ctx.Err(); err != nil {
			return err
		}
		if prompt != "" {
			fmt.Fprint(out, prompt)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErr:
			return err
		case line := <-lines:
			e.Exec(ctx, line, out)
		}
	}
	return nil
}

// resetFlags clears flag values cobra keeps between executions
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
