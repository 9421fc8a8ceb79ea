package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/andrei91ro/lulu-c/internal/assemble"
	"github.com/andrei91ro/lulu-c/internal/config"
	"github.com/andrei91ro/lulu-c/internal/emit"
	"github.com/andrei91ro/lulu-c/internal/generate"
	"github.com/andrei91ro/lulu-c/internal/model"
)

// inspectCmd shows what generate would emit without writing anything
var inspectCmd = &cobra.Command{
	Use:   "inspect <model.yaml> [colony]",
	Short: "Show identifiers, agents and features of a colony",
	Long: `Runs the generation pipeline in memory and prints the canonical alphabet
with its object identifiers, the agent identifiers and the enabled features.
Without a colony name every colony of a swarm is shown. No files are written.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	p := resolveParams(cmd, args)
	// inspect never writes; the identity base only shows up in the units
	if p.MinID == config.UnsetMinID {
		p.MinID = 0
	}
	if err := p.Validate(); err != nil {
		return err
	}

	policy := assemble.DefaultPolicy()
	if p.PolicyPath != "" {
		var err error
		if policy, err = assemble.LoadPolicy(p.PolicyPath); err != nil {
			return err
		}
	}
	m, err := model.Load(p.ModelPath)
	if err != nil {
		return err
	}

	// without a colony name a swarm is inspected colony by colony
	names := []string{p.ColonyName}
	if p.ColonyName == "" {
		names = names[:0]
		for _, c := range m.Colonies() {
			names = append(names, c.Name)
		}
	}
	out := cmd.OutOrStdout()
	for i, name := range names {
		p.ColonyName = name
		res, err := generate.Build(m, p, policy)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, renderSummary(res, p.RobotCount))
	}
	return nil
}

func renderSummary(res *generate.Result, robots int) string {
	s := emit.Summarize(res.Colony)
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Colony"), res.Colony.Name)
	fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf("capacity %d, %d robots, %d wildcard variants added",
		res.Colony.Capacity, robots, len(res.Expansion.Added))))

	objects := newTable("ID", "Object", "Identifier", "Kind")
	for _, row := range s.Symbols {
		objects.Row(strconv.Itoa(int(row.ID)), row.Name, row.Ident, row.Kind.String())
	}
	b.WriteString(objects.Render())
	b.WriteString("\n")

	agents := newTable("ID", "Agent", "Identifier")
	for _, row := range s.Agents {
		agents.Row(strconv.Itoa(row.ID), row.Name, row.Ident)
	}
	b.WriteString(agents.Render())
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("Features"))
	b.WriteString("\n")
	if len(s.Features) == 0 {
		b.WriteString(mutedStyle.Render("  none"))
		b.WriteString("\n")
	}
	for _, f := range s.Features {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	return b.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}
