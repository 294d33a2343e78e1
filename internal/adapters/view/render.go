package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/skillmatrix/internal/domain/badge"
	"github.com/okian/skillmatrix/internal/domain/model"
)

// WriteText prints the document as aligned plain text.
func (d *Document) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	rows := d.Rows()
	if len(rows) > 0 {
		fmt.Fprintln(tw, "SKILL\tCATEGORY\tSELF\tMANAGER\tBUTTONS\tLEVEL")
		for _, r := range rows {
			self, _ := r.BadgeText(badge.NodeSelfBadge)
			mgr, _ := r.BadgeText(badge.NodeManagerBadge)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Skill().Name, r.Skill().Category, dash(self), dash(mgr),
				buttons(r), r.LevelText(model.RaterSelf))
		}
		fmt.Fprintln(tw)
	}

	d.mu.Lock()
	counters := make([][2]string, 0, len(d.counters))
	for _, k := range sortedKeys(d.counters) {
		counters = append(counters, [2]string{k, d.counters[k]})
	}
	tables := make(map[string][][]string, len(d.tables))
	for k, v := range d.tables {
		tables[k] = v
	}
	lists := make(map[string][]string, len(d.lists))
	for k, v := range d.lists {
		lists[k] = v
	}
	hidden := make([]string, 0)
	for _, k := range sortedKeys(d.sections) {
		if !d.sections[k] {
			hidden = append(hidden, k)
		}
	}
	toasts := append([]string(nil), toastLines(d)...)
	d.mu.Unlock()

	for _, c := range counters {
		fmt.Fprintf(tw, "%s:\t%s\n", c[0], c[1])
	}
	if len(counters) > 0 {
		fmt.Fprintln(tw)
	}
	for _, name := range sortedKeys(tables) {
		fmt.Fprintf(tw, "[%s]\n", name)
		for _, row := range tables[name] {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		fmt.Fprintln(tw)
	}
	for _, name := range sortedKeys(lists) {
		fmt.Fprintf(tw, "[%s]\n", name)
		for _, item := range lists[name] {
			fmt.Fprintf(tw, "  %s\n", item)
		}
		fmt.Fprintln(tw)
	}
	for _, name := range hidden {
		fmt.Fprintf(tw, "(%s hidden)\n", name)
	}
	for _, t := range toasts {
		fmt.Fprintln(tw, t)
	}
	return tw.Flush()
}

func toastLines(d *Document) []string {
	out := make([]string, 0, len(d.toasts))
	for _, t := range d.toasts {
		out = append(out, fmt.Sprintf("[%s] %s", t.Kind, t.Message))
	}
	return out
}

func buttons(r *Row) string {
	kind := model.RaterSelf
	if r.Active(model.RaterManager).Valid() {
		kind = model.RaterManager
	}
	var b strings.Builder
	for i, on := range r.Buttons(kind) {
		if on {
			fmt.Fprintf(&b, "[%d]", i+1)
		} else {
			fmt.Fprintf(&b, " %d ", i+1)
		}
	}
	if r.Disabled() {
		b.WriteString(" (read-only)")
	}
	return b.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
