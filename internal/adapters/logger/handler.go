package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// errorKey is the attribute Logger.Error attaches the failure under.
const errorKey = "error"

type levelStyle struct {
	glyph string
	color string
}

var (
	infoStyle   = levelStyle{color: "#667085"}
	levelStyles = map[slog.Level]levelStyle{
		slog.LevelWarn:  {glyph: "!", color: "#F59E0B"},
		slog.LevelError: {glyph: "✗", color: "#D93025"},
	}
)

// colorProfile honours NO_COLOR and otherwise detects the terminal.
func colorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// PrettyHandler is a slog.Handler for terminals. An error attribute is
// expanded into its zerr cause chain, and the other attributes are printed in
// the same sorted [k=v] form as error metadata.
type PrettyHandler struct {
	mu     *sync.Mutex
	out    *termenv.Output
	level  slog.Leveler
	prefix string
	attrs  map[string]any
}

// NewPrettyHandler creates a PrettyHandler writing to w, or stderr when w is nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &PrettyHandler{
		mu:    &sync.Mutex{},
		out:   termenv.NewOutput(w, termenv.WithProfile(colorProfile())),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := maps.Clone(h.attrs)
	var cause error
	r.Attrs(func(a slog.Attr) bool {
		if err, ok := a.Value.Any().(error); ok && a.Key == errorKey && cause == nil {
			cause = err
			return true
		}
		attrs = collectAttr(attrs, h.prefix, a)
		return true
	})

	var text string
	if cause != nil {
		entries := collectErrorEntries(cause)
		entries[0].metadata = merge(entries[0].metadata, attrs)
		text = formatErrorEntries(entries)
	} else {
		text = r.Message
		if meta := formatMetadata(attrs); meta != "" {
			text += " " + meta
		}
	}

	style, ok := levelStyles[r.Level]
	if !ok {
		style = infoStyle
	}
	if style.glyph != "" {
		text = style.glyph + " " + text
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.WriteString(h.out.String(text).Foreground(h.out.Color(style.color)).String() + "\n")
	return err
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	next.attrs = maps.Clone(h.attrs)
	for _, a := range attrs {
		next.attrs = collectAttr(next.attrs, h.prefix, a)
	}
	return next
}

// WithGroup returns a handler that qualifies later attributes with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	c := *h
	return &c
}

// collectAttr flattens a into dst under prefix. Groups become dotted keys.
func collectAttr(dst map[string]any, prefix string, a slog.Attr) map[string]any {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, g := range a.Value.Group() {
			dst = collectAttr(dst, inner, g)
		}
		return dst
	}
	if dst == nil {
		dst = make(map[string]any)
	}
	dst[prefix+a.Key] = a.Value.Any()
	return dst
}

// messager is implemented by zerr errors, which report their own message
// without the cause chain.
type messager interface {
	Message() string
}

// metadataCarrier is implemented by zerr errors carrying key-value context.
type metadataCarrier interface {
	Metadata() map[string]any
}

type errorEntry struct {
	message  string
	metadata map[string]any
}

// collectErrorEntries walks the zerr chain. The first non-zerr error ends the
// walk and contributes its full text. Metadata on a wrapper without a message
// belongs to the error it wraps. The result is never empty.
func collectErrorEntries(err error) []errorEntry {
	var entries []errorEntry
	var pending map[string]any
	for current := err; current != nil; current = errors.Unwrap(current) {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, errorEntry{message: current.Error(), metadata: pending})
			pending = nil
			break
		}

		var metadata map[string]any
		if c, ok := current.(metadataCarrier); ok {
			metadata = c.Metadata()
		}
		pending = merge(pending, metadata)

		if m.Message() == "" {
			continue
		}
		entries = append(entries, errorEntry{message: m.Message(), metadata: pending})
		pending = nil
	}
	if len(entries) == 0 {
		entries = append(entries, errorEntry{message: err.Error(), metadata: pending})
	}
	return entries
}

func merge(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	maps.Copy(dst, src)
	return dst
}

func formatErrorEntries(entries []errorEntry) string {
	var lines []string
	for i, entry := range entries {
		msgLines := strings.Split(entry.message, "\n")
		first := msgLines[0]
		if meta := formatMetadata(entry.metadata); meta != "" {
			first += " " + meta
		}

		if i == 0 {
			lines = append(lines, "Error: "+first)
			for _, line := range msgLines[1:] {
				lines = append(lines, "       "+line)
			}
			continue
		}

		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+first)
		for _, line := range msgLines[1:] {
			lines = append(lines, "      "+line)
		}
	}
	return strings.Join(lines, "\n")
}

func formatMetadata(metadata map[string]any) string {
	if len(metadata) == 0 {
		return ""
	}
	parts := make([]string, 0, len(metadata))
	for _, k := range slices.Sorted(maps.Keys(metadata)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, metadata[k]))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
