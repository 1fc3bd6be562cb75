package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"

	"busindex/internal/emit"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <snapshot.json|snapshot.msgpack>",
	Short: "Print the contents of a json or msgpack index snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().String("type", "", "only show subscribers whose type contains this text (case-insensitive)")
	inspectCmd.Flags().String("format", "table", "output format (table|json)")
	inspectCmd.Flags().Int("width", 48, "truncate cells wider than this (0=never)")
	inspectCmd.Flags().Bool("fullnames", false, "print full import paths instead of package-qualified names")
}

func runInspect(cmd *cobra.Command, args []string) error {
	typeFilter, err := cmd.Flags().GetString("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		return fmt.Errorf("failed to get width flag: %w", err)
	}
	fullNames, err := cmd.Flags().GetBool("fullnames")
	if err != nil {
		return fmt.Errorf("failed to get fullnames flag: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap, err := emit.DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	snap = filterSnapshot(snap, typeFilter)

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "table":
	default:
		return fmt.Errorf("unsupported format %q (must be table or json)", format)
	}

	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: schema %d, %s, %d subscribers, %d methods\n\n",
		args[0], snap.Schema, valueOrUnknown(snap.Generator), len(snap.Subscribers), snap.Entries())
	return renderTable(out, snapshotRows(snap, fullNames), tableOptions{width: width, styled: colored})
}

func filterSnapshot(snap emit.Snapshot, needle string) emit.Snapshot {
	if needle == "" {
		return snap
	}
	fold := cases.Fold()
	needle = fold.String(needle)
	kept := make([]emit.SnapshotSubscriber, 0, len(snap.Subscribers))
	for _, s := range snap.Subscribers {
		if strings.Contains(fold.String(s.Type), needle) {
			kept = append(kept, s)
		}
	}
	snap.Subscribers = kept
	return snap
}

var inspectHeader = []string{"SUBSCRIBER", "METHOD", "EVENT", "MODE", "PRIORITY", "STICKY"}

func snapshotRows(snap emit.Snapshot, fullNames bool) [][]string {
	name := shortType
	if fullNames {
		name = func(s string) string { return s }
	}
	rows := [][]string{inspectHeader}
	for _, sub := range snap.Subscribers {
		for i, e := range sub.Entries {
			owner := ""
			if i == 0 {
				owner = name(sub.Type)
			}
			method := e.Method
			if e.Inherited {
				method = name(e.Declaring) + "." + e.Method
			}
			sticky := ""
			if e.Sticky {
				sticky = "yes"
			}
			rows = append(rows, []string{owner, method, name(e.Event), e.ThreadMode, strconv.Itoa(e.Priority), sticky})
		}
	}
	return rows
}

var importDirs = regexp.MustCompile(`(?:[A-Za-z0-9_.~-]+/)+`)

// shortType drops import path directories everywhere in a type:
// "map[string]*example.com/app/bus.Base" -> "map[string]*bus.Base".
func shortType(s string) string {
	return importDirs.ReplaceAllString(s, "")
}

type tableOptions struct {
	width  int  // max cell width, 0 = unlimited
	styled bool // style the header row
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// renderTable prints rows[0] as a header and aligns columns by display width,
// so wide runes in type names do not break the layout.
func renderTable(w io.Writer, rows [][]string, opts tableOptions) error {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for r, row := range rows {
		for i, cell := range row {
			cell = truncate(cell, opts.width)
			rows[r][i] = cell
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	for r, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			last := i == len(row)-1
			if !last {
				cell = runewidth.FillRight(cell, widths[i])
			}
			if r == 0 && opts.styled {
				cell = headerStyle.Render(cell)
			}
			sb.WriteString(cell)
			if !last {
				sb.WriteString("  ")
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
