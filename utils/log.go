package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var Logger *slog.Logger

type LogLevel slog.Level

const (
	LevelDebug = LogLevel(slog.LevelDebug)
	LevelInfo  = LogLevel(slog.LevelInfo)
	LevelWarn  = LogLevel(slog.LevelWarn)
	LevelError = LogLevel(slog.LevelError)
)

// LevelFromVerbosity maps the number of -v flags to a level:
// none shows warnings, one adds info and two or more add debug.
func LevelFromVerbosity(count int) LogLevel {
	switch {
	case count <= 0:
		return LevelWarn
	case count == 1:
		return LevelInfo
	default:
		return LevelDebug
	}
}

const maxOrderLength = 120

func truncateOrder(values string) string {
	if len(values) <= maxOrderLength {
		return values
	}
	return values[:maxOrderLength] + "..."
}

type PrettyHandler struct {
	slog.Handler
	mu  *sync.Mutex
	out io.Writer
}

func NewPrettyHandler(out io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	return &PrettyHandler{
		Handler: slog.NewTextHandler(out, opts),
		mu:      &sync.Mutex{},
		out:     out,
	}
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrettyHandler{Handler: h.Handler.WithAttrs(attrs), mu: h.mu, out: h.out}
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{Handler: h.Handler.WithGroup(name), mu: h.mu, out: h.out}
}

func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	// Get level prefix
	level := ""
	switch r.Level {
	case slog.LevelDebug:
		level = color.BlueString("DBG")
	case slog.LevelInfo:
		level = color.GreenString("INF")
	case slog.LevelWarn:
		level = color.YellowString("WRN")
	case slog.LevelError:
		level = color.RedString("ERR")
	}

	// Get all attributes
	var orderedAttrs []struct{ k, v string }
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "level" {
			return true
		}
		orderedAttrs = append(orderedAttrs, struct{ k, v string }{a.Key, a.Value.String()})
		return true
	})

	// Format based on message type
	var output string
	switch msg := r.Message; msg {
	case "reading file", "downloading file":
		input, size := "", ""
		for _, attr := range orderedAttrs {
			switch attr.k {
			case "input":
				input = color.CyanString(attr.v)
			case "size":
				size = color.YellowString(attr.v)
			}
		}
		output = fmt.Sprintf("%s %s %s", level, msg, input)
		if size != "" {
			output += fmt.Sprintf(" (%s)", size)
		}

	case "found frame1":
		dump := ""
		for _, attr := range orderedAttrs {
			if attr.k == "abc" {
				dump = attr.v
			}
		}
		output = fmt.Sprintf("%s found frame1:\n%s", level, dump)

	case "order":
		count, names := "", ""
		for _, attr := range orderedAttrs {
			switch attr.k {
			case "count":
				count = color.YellowString(attr.v)
			case "names":
				parts := strings.Split(truncateOrder(attr.v), ", ")
				colored := make([]string, len(parts))
				for i, s := range parts {
					colored[i] = color.GreenString(s)
				}
				names = strings.Join(colored, ", ")
			}
		}
		output = fmt.Sprintf("%s order (%s binaries): %s", level, count, names)

	case "missing binary":
		name := ""
		for _, attr := range orderedAttrs {
			if attr.k == "name" {
				name = color.RedString(attr.v)
			}
		}
		output = fmt.Sprintf("%s unable to find binary with name: %s", level, name)

	case "timing":
		phase, took := "", ""
		var share float64
		for _, attr := range orderedAttrs {
			switch attr.k {
			case "phase":
				phase = attr.v
			case "took":
				took = color.YellowString(attr.v)
			case "share":
				share, _ = strconv.ParseFloat(strings.TrimSuffix(attr.v, "%"), 64)
			}
		}
		output = fmt.Sprintf("%s     %-20s %s %5.1f%% %s",
			level, phase, createProgressBar(share), share, took)

	case "timing stats":
		total := ""
		for _, attr := range orderedAttrs {
			if attr.k == "total" {
				total = color.GreenString(attr.v)
			}
		}
		output = fmt.Sprintf("%s Timing stats (total %s):", level, total)

	default:
		output = fmt.Sprintf("%s %s", level, msg)
		for _, attr := range orderedAttrs {
			output += fmt.Sprintf(" %s=%s",
				color.New(color.Bold).Sprint(attr.k),
				strings.TrimSpace(attr.v),
			)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.out, output)
	return err
}

// InitLogger installs the pretty handler on stderr so that stdout stays free
// for the unpacked movie.
func InitLogger(level LogLevel) *slog.Logger {
	return InitLoggerTo(os.Stderr, level)
}

func InitLoggerTo(out io.Writer, level LogLevel) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.Level(level),
	}

	Logger = slog.New(NewPrettyHandler(out, opts))
	slog.SetDefault(Logger)
	return Logger
}

// Helper to create a progress bar
func createProgressBar(percent float64) string {
	width := 30
	completed := int(percent * float64(width) / 100)
	if completed > width {
		completed = width
	}
	if completed < 0 {
		completed = 0
	}

	bar := strings.Builder{}
	bar.WriteString("[")

	// Add completed portion
	bar.WriteString(color.GreenString(strings.Repeat("=", completed)))

	// Add remaining portion
	if completed < width {
		bar.WriteString(color.HiBlackString(strings.Repeat("-", width-completed)))
	}

	bar.WriteString("]")
	return bar.String()
}
