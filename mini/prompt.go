package mini

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/reflow/truncate"
	"github.com/samber/lo"

	"github.com/streamer459/streamingdev-sub000/color"
	"github.com/streamer459/streamingdev-sub000/icon"
	"github.com/streamer459/streamingdev-sub000/style"
	"github.com/streamer459/streamingdev-sub000/util"
)

// bind is a single-key menu action.
type bind struct {
	key, description string
}

func (b *bind) eq(other *bind) bool {
	return b != nil && other != nil && b.key == other.key
}

var (
	quit    = &bind{"q", "quit"}
	back    = &bind{"b", "back"}
	refresh = &bind{"r", "refresh"}
	pause   = &bind{"p", "pause/resume"}
	quality = &bind{"s", "switch quality"}
)

var stdin = bufio.NewReader(os.Stdin)

type input struct {
	value string
}

// getInput reads lines until the validator accepts one.
func getInput(validator func(string) bool) (*input, error) {
	for {
		fmt.Print(style.Fg(color.Purple)("> "))

		line, err := stdin.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if !validator(line) {
			continue
		}

		return &input{value: line}, nil
	}
}

func title(t string) {
	fmt.Println(style.Title(t))
}

func hint(msg string) {
	fmt.Println(style.Faint(msg))
}

func progress(msg string) (eraser func()) {
	return util.PrintErasable(fmt.Sprintf("%s %s", icon.Get(icon.Progress), msg))
}

func fail(msg string) {
	fmt.Printf("%s %s\n", icon.Get(icon.Fail), msg)
}

// menu prints numbered items plus single-key binds and reads a choice.
// Choosing an item yields a nil bind; quit is always on the menu.
func menu[T fmt.Stringer](items []T, binds ...*bind) (*bind, T, error) {
	var zero T

	binds = append(binds, quit)

	for i, item := range items {
		fmt.Printf("%s %s\n", style.Faint(fmt.Sprintf("[%d]", i+1)), clip(item.String()))
	}

	legend := make([]string, 0, len(binds))
	for _, b := range binds {
		legend = append(legend, fmt.Sprintf("[%s] %s", b.key, b.description))
	}
	hint(strings.Join(legend, "  "))

	in, err := getInput(func(s string) bool {
		for _, b := range binds {
			if s == b.key {
				return true
			}
		}

		n, err := strconv.Atoi(s)
		return err == nil && 0 < n && n <= len(items)
	})
	if err != nil {
		return nil, zero, err
	}

	for _, b := range binds {
		if in.value == b.key {
			return b, zero, nil
		}
	}

	n := lo.Must(strconv.Atoi(in.value))
	return nil, items[n-1], nil
}

func clip(s string) string {
	if truncateAt <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(truncateAt), "…")
}
