package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pscheid92/gamebridge/internal/client"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
		return
	}

	switch v := data.(type) {
	case *client.Player:
		o.printPlayer(v)
	case map[string]any:
		o.printMap(v)
	default:
		o.printJSON(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	_, _ = fmt.Fprintln(o.w, msg)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printPlayer(p *client.Player) {
	_, _ = fmt.Fprintf(o.w, "Player:          %s\n", p.PlayerID)
	_, _ = fmt.Fprintf(o.w, "Display name:    %s\n", p.DisplayName)
	if p.Title != "" {
		_, _ = fmt.Fprintf(o.w, "Title:           %s\n", p.Title)
	}
	_, _ = fmt.Fprintf(o.w, "Visible profile: %t\n", p.VisibleProfile)
	if p.NeedRefreshToken {
		_, _ = fmt.Fprintln(o.w, "No refresh token stored; sign in again with forced consent.")
	}
}

func (o *Output) printMap(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(o.w, "%s: %v\n", k, m[k])
	}
}
