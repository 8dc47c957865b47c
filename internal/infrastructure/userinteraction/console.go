package userinteraction

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.UserInteractionPort = (*ConsoleUserInteraction)(nil)

const snapshotPreviewLen = 240

type line struct {
	text string
	err  error
}

// ConsoleUserInteraction prompts on a terminal. Reads happen on one helper
// goroutine so a prompt can be abandoned when its ctx is cancelled; a line typed
// after that is delivered to the next prompt.
type ConsoleUserInteraction struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan line
}

func NewConsoleUserInteraction() *ConsoleUserInteraction {
	return NewConsole(os.Stdin, color.Output)
}

func NewConsole(in io.Reader, out io.Writer) *ConsoleUserInteraction {
	return &ConsoleUserInteraction{in: in, out: out}
}

func (u *ConsoleUserInteraction) startReader() {
	u.once.Do(func() {
		u.lines = make(chan line)
		go func() {
			defer close(u.lines)
			reader := bufio.NewReader(u.in)
			for {
				text, err := reader.ReadString('\n')
				if text != "" || err == nil {
					u.lines <- line{text: text}
				}
				if err != nil {
					u.lines <- line{err: err}
					return
				}
			}
		}()
	})
}

// Prompt prints label followed by " › " and returns the trimmed line.
func (u *ConsoleUserInteraction) Prompt(ctx context.Context, label string) (string, error) {
	u.startReader()
	fmt.Fprintf(u.out, "%s › ", label)

	select {
	case <-ctx.Done():
		fmt.Fprintln(u.out)
		return "", ctx.Err()
	case l, ok := <-u.lines:
		if !ok {
			return "", fmt.Errorf("failed to read user input: %w", io.EOF)
		}
		if l.err != nil {
			if errors.Is(l.err, io.EOF) {
				return "", fmt.Errorf("failed to read user input: %w", io.EOF)
			}
			return "", fmt.Errorf("failed to read user input: %w", l.err)
		}
		return strings.TrimSpace(l.text), nil
	}
}

func (u *ConsoleUserInteraction) AskQuestion(ctx context.Context, question string) (string, error) {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprint(u.out, "\n[USER INPUT REQUIRED] ")
	return u.Prompt(ctx, question)
}

func (u *ConsoleUserInteraction) ShowStep(ctx context.Context, step int, snapshot entity.Snapshot) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(u.out, "\n━━━ Step %d ━━━\n", step)

	dim := color.New(color.Faint)
	dim.Fprintf(u.out, "   %s\n", truncate(snapshot.String(), snapshotPreviewLen))
}

func (u *ConsoleUserInteraction) ShowAction(ctx context.Context, action entity.Action) {
	icon, name := actionDisplay(action.Kind())

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(u.out, "%s %s\n", icon, name)

	if summary := formatAction(action); summary != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(u.out, "   %s\n", summary)
	}
}

func (u *ConsoleUserInteraction) ShowActionError(ctx context.Context, action entity.Action, err error) {
	red := color.New(color.FgRed)
	red.Fprint(u.out, "❌ Error: ")

	dim := color.New(color.Faint)
	dim.Fprintln(u.out, truncate(err.Error(), 300))
}

func actionDisplay(kind entity.ActionKind) (string, string) {
	displays := map[entity.ActionKind][2]string{
		entity.ActionNavigate: {"🌐", "Navigate"},
		entity.ActionClick:    {"🖱️", "Click"},
		entity.ActionType:     {"✏️", "Type"},
		entity.ActionWaitFor:  {"⏳", "Wait for"},
		entity.ActionAskUser:  {"❓", "Ask user"},
		entity.ActionDone:     {"✅", "Done"},
	}

	if display, ok := displays[kind]; ok {
		return display[0], display[1]
	}
	return "🔧", string(kind)
}

func formatAction(action entity.Action) string {
	switch a := action.(type) {
	case entity.NavigateAction:
		return fmt.Sprintf("URL: %s", a.URL)
	case entity.ClickAction:
		return fmt.Sprintf("Selector: %s", truncate(a.Selector, 60))
	case entity.TypeAction:
		return fmt.Sprintf("Field: %s → %s", truncate(a.Selector, 40), truncate(a.Text, 30))
	case entity.WaitForAction:
		return fmt.Sprintf("Selector: %s (up to %s)", truncate(a.Selector, 50), a.Timeout)
	case entity.AskUserAction:
		return truncate(a.Question, 80)
	case entity.DoneAction:
		return truncate(a.Payload, 80)
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
