package view

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/client/editor"
	"github.com/dmitrijs2005/sellingcar/internal/client/models"
)

type Row struct {
	Key     models.Key
	Cells   []string
	Editing bool
}

type DraftField struct {
	Name   string
	Label  string
	Value  string
	Locked bool
}

// Frame is the complete, render-ready state of a view.
type Frame struct {
	Title   string
	Columns []catalog.Column
	Rows    []Row
	Empty   string
	Loading bool
	Mode    editor.Mode
	EditKey models.Key
	Draft   []DraftField
	Error   string
	Actions []string
}

// Frame builds the current frame. Equal inputs give equal frames.
func (v *View) Frame() Frame {
	st := v.store.State()
	ed := v.editor.Snapshot()

	f := Frame{
		Title:   v.desc.Title,
		Columns: v.desc.Columns(),
		Loading: st.Loading,
		Mode:    ed.Mode,
		EditKey: ed.Key,
	}

	for _, rec := range st.Records {
		key := models.KeyOf(v.desc, rec)
		row := Row{Key: key, Editing: ed.Mode == editor.Editing && key.Equal(ed.Key)}
		for _, c := range f.Columns {
			row.Cells = append(row.Cells, models.FormatValue(rec[c.Name], c.Kind))
		}
		f.Rows = append(f.Rows, row)
	}
	if len(f.Rows) == 0 && !st.Loading {
		f.Empty = EmptyMessage
	}

	if ed.Mode != editor.Idle {
		for _, fd := range v.desc.Fields {
			shown := fd.Input || (ed.Mode == editor.Editing && v.desc.IsKey(fd.Name))
			if !shown {
				continue
			}
			locked := ed.Mode == editor.Editing && !fd.Editable
			label := fd.Label
			if label == "" {
				label = fd.Name
			}
			f.Draft = append(f.Draft, DraftField{Name: fd.Name, Label: label, Value: ed.Draft[fd.Name], Locked: locked})
		}
	}

	// the newest dispatch failure wins; a submit failure reaches lastErr
	// through Dispatch, so the editor's own copy is not consulted
	v.mu.Lock()
	lastErr := v.lastErr
	v.mu.Unlock()
	switch {
	case lastErr != nil:
		f.Error = Message(lastErr)
	case st.Err != nil:
		f.Error = Message(st.Err)
	}

	f.Actions = actions(v.desc.Capabilities, ed.Mode)
	return f
}

func actions(c catalog.Capabilities, mode editor.Mode) []string {
	var out []string
	if mode != editor.Idle {
		out = append(out, "set <field> <value>", "save", "cancel")
	}
	if c.Create {
		out = append(out, "add")
	}
	if c.Edit {
		out = append(out, "edit <key>")
	}
	if c.Delete {
		out = append(out, "delete <key>")
	}
	return append(out, "refresh")
}

// TerminalWidth reports the width of stdout, or 0 when it is not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// Render writes the current frame as an aligned text table.
func (v *View) Render(w io.Writer) error {
	return RenderFrame(w, v.Frame(), v.width())
}

// RenderFrame writes f. Cells are truncated so a row fits in width columns
// when width is positive.
func RenderFrame(w io.Writer, f Frame, width int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", f.Title)

	limit := 0
	if width > 0 && len(f.Columns) > 0 {
		limit = max((width-2)/len(f.Columns)-2, 4)
	}

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	header := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		header[i] = truncate(c.Label, limit)
	}
	fmt.Fprintf(tw, "  %s\n", strings.Join(header, "\t"))
	for _, r := range f.Rows {
		marker := "  "
		if r.Editing {
			marker = "> "
		}
		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			cells[i] = truncate(c, limit)
		}
		fmt.Fprintf(tw, "%s%s\n", marker, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	switch {
	case f.Loading && len(f.Rows) == 0:
		b.WriteString("  loading...\n")
	case f.Empty != "":
		fmt.Fprintf(&b, "  %s\n", f.Empty)
	}

	switch f.Mode {
	case editor.Composing:
		b.WriteString("-- new record --\n")
	case editor.Editing:
		fmt.Fprintf(&b, "-- editing %s --\n", f.EditKey)
	}
	if len(f.Draft) > 0 {
		dw := tabwriter.NewWriter(&b, 0, 0, 1, ' ', 0)
		for _, d := range f.Draft {
			lock := ""
			if d.Locked {
				lock = " (locked)"
			}
			fmt.Fprintf(dw, "  %s\t[%s]%s:\t%s\n", d.Name, d.Label, lock, d.Value)
		}
		if err := dw.Flush(); err != nil {
			return err
		}
	}

	if f.Error != "" {
		fmt.Fprintf(&b, "error: %s\n", f.Error)
	}
	fmt.Fprintf(&b, "actions: %s\n", strings.Join(f.Actions, ", "))

	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}
