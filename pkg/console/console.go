// Package console provides an interactive shell to poke the running
// controller: press buttons, inject messages and inspect the link.
package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/microctl/pkg/framework"
	"github.com/robotalks/microctl/pkg/link"
	"github.com/robotalks/microctl/pkg/ticker"
)

// QueryTimeout bounds waiting for the loop to answer a query.
const QueryTimeout = time.Second

// App is the part of ticker.App exposed on the console.
type App interface {
	LinkState() string
}

// Sender sends an outbound message.
type Sender interface {
	Send(tokens ...string)
}

// Console forwards commands to the loop. Nothing here touches the app
// outside of the loop goroutine.
type Console struct {
	Ctl    framework.LoopControl
	App    App
	Sender Sender
}

const consoleKey = "$console"

// Press injects a button press.
func (c *Console) Press(button string) error {
	if !ticker.Press(c.Ctl, strings.ToLower(button)) {
		return fmt.Errorf("unknown button %q", button)
	}
	return nil
}

// Inject posts tokens as if they were received from the server.
func (c *Console) Inject(tokens ...string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("message type required")
	}
	c.Ctl.Post(ticker.MessageEvent{Tokens: tokens})
	return nil
}

// Send transmits tokens to the server.
func (c *Console) Send(tokens ...string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("message type required")
	}
	c.Ctl.Do(func() { c.Sender.Send(tokens...) })
	return nil
}

// LinkState queries the link state on the loop goroutine.
func (c *Console) LinkState() (string, error) {
	resultCh := make(chan string, 1)
	c.Ctl.Do(func() { resultCh <- c.App.LinkState() })
	select {
	case s := <-resultCh:
		return s, nil
	case <-time.After(QueryTimeout):
		return "", context.DeadlineExceeded
	}
}

func consoleFrom(c *ishell.Context) *Console {
	return c.Get(consoleKey).(*Console)
}

func report(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	c.Println("OK")
}

var commands = []*ishell.Cmd{
	{
		Name:    "press",
		Aliases: []string{"p"},
		Help:    "a|b",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("button required"))
				return
			}
			report(c, consoleFrom(c).Press(c.Args[0]))
		},
	},
	{
		Name:    "inject",
		Aliases: []string{"i"},
		Help:    "TYPE [TOKEN...]",
		Func: func(c *ishell.Context) {
			report(c, consoleFrom(c).Inject(c.Args...))
		},
	},
	{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TYPE [TOKEN...]",
		Func: func(c *ishell.Context) {
			report(c, consoleFrom(c).Send(c.Args...))
		},
	},
	{
		Name: "state",
		Help: "",
		Func: func(c *ishell.Context) {
			s, err := consoleFrom(c).LinkState()
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(s)
		},
	},
	{
		Name: "ports",
		Help: "",
		Func: func(c *ishell.Context) {
			ports, err := link.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	},
}

// Name implements framework.Named.
func (c *Console) Name() string {
	return "console"
}

// Run implements framework.Runnable. Exiting the shell stops the
// program.
func (c *Console) Run(ctx context.Context) error {
	shell := ishell.New()
	shell.Set(consoleKey, c)
	shell.SetPrompt("microctl > ")
	for _, cmd := range commands {
		shell.AddCmd(cmd)
	}
	return framework.RunWithContextCancel(ctx, func() { shell.Close() }, func() error {
		shell.Run()
		return nil
	})
}
