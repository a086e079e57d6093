// Package console provides the interactive front ends of the tabbridge
// command: a line-oriented console and a full-screen terminal UI. Both run
// the same commands through a Commander and display bridge notifications
// rendered by a Feed.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Console reads commands line by line and prints bridge notifications as
// they arrive.
type Console struct {
	commander *Commander
	queue     *Queue
	reader    io.Reader
	writer    io.Writer
	mu        sync.Mutex
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithReader sets the command input (default is os.Stdin).
func WithReader(r io.Reader) ConsoleOption {
	return func(c *Console) {
		c.reader = r
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.writer = w
	}
}

// NewConsole creates a console that runs commands through commander and
// shows the lines pushed to queue.
func NewConsole(commander *Commander, queue *Queue, opts ...ConsoleOption) *Console {
	c := &Console{
		commander: commander,
		queue:     queue,
		reader:    os.Stdin,
		writer:    os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes commands until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	stop := make(chan struct{})
	eventsDone := make(chan struct{})
	go c.printEvents(stop, eventsDone)
	defer func() {
		close(stop)
		<-eventsDone
	}()

	c.println(headerStyle.Render("tabbridge"))
	c.println(tipsStyle.Render("Type help for commands, quit to exit."))

	input := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.reader)
		for scanner.Scan() {
			select {
			case input <- scanner.Text():
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		c.print(promptStyle.Render("> "))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		case line := <-input:
			out, err := c.commander.Execute(ctx, line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				c.println(errorStyle.Render("error: " + err.Error()))
				continue
			}
			if out != "" {
				c.println(out)
			}
		}
	}
}

func (c *Console) printEvents(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case line := <-c.queue.C():
			c.println(line)
		case <-stop:
			// Show whatever is already queued
			for {
				select {
				case line := <-c.queue.C():
					c.println(line)
				default:
					return
				}
			}
		}
	}
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.writer, s)
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.writer, s)
}
