package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/outpost-go/internal/application/game"
)

// treeNode is one line of a rendered status tree
type treeNode struct {
	label    string
	children []*treeNode
}

func (n *treeNode) add(format string, args ...any) *treeNode {
	child := &treeNode{label: fmt.Sprintf(format, args...)}
	n.children = append(n.children, child)
	return child
}

// TreeFormatter renders the game status as an indented tree
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

// FormatStatus renders the whole status view
func (f *TreeFormatter) FormatStatus(view *game.StatusView) string {
	if view == nil {
		return "(no status)"
	}

	root := &treeNode{label: fmt.Sprintf("Outpost [%s] seed %d", view.Profile, view.Seed)}

	player := root.add("Player at (%d, %d) in chunk (%d, %d)", view.Position.X, view.Position.Y, view.Chunk.X, view.Chunk.Y)
	if view.PendingDiscovery > 0 {
		player.add("%d node(s) waiting to be discovered", view.PendingDiscovery)
	}

	nodes := root.add("Discovered nodes (%d)", len(view.Discovered))
	for _, n := range view.Discovered {
		label := fmt.Sprintf("%s %s %d/%d, %.1f tiles", n.ID, n.DisplayName, n.RemainingAmount, n.Capacity, n.Distance)
		if n.ID == view.PinnedNodeID {
			label += " " + f.color("\033[36m", "[pinned]")
		}
		if n.RemainingAmount == 0 {
			label += " " + f.color("\033[31m", "[exhausted]")
		}
		nodes.add("%s", label)
	}

	machines := root.add("Machines (%d)", len(view.Machines))
	for _, m := range view.Machines {
		machine := machines.add("%s %s", m.ID, f.stateText(m.State))
		if m.AssignedNodeID != "" {
			machine.add("node %s", m.AssignedNodeID)
		}
		if m.RecipeID != "" {
			job := machine.add("%s x%d %s %3.0f%%", m.RecipeID, m.Batch, progressBar(m.Progress, 10), m.Progress*100)
			if m.Remaining != "" {
				job.add("%s remaining", m.Remaining)
			}
		}
		if m.QueueLength > 0 {
			machine.add("%d queued", m.QueueLength)
		}
	}

	root.add("Inventory: %s", formatCounts(view.Inventory))

	if len(view.Toasts) > 0 {
		toasts := root.add("New milestones (%d)", len(view.Toasts))
		for _, t := range view.Toasts {
			toasts.add("%s: %s (ack with 'outpost toast ack %s')", t.Title, t.Description, t.ID)
		}
	}

	save := root.add("Save breaker %s", view.SaveBreaker)
	if view.SavePending {
		save.add("discovery save pending")
	}

	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	return builder.String()
}

// formatNode recursively formats a node and its children
func (f *TreeFormatter) formatNode(builder *strings.Builder, node *treeNode, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	if isRoot {
		linePrefix = ""
	} else if isLast {
		linePrefix = prefix + "└── "
	} else {
		linePrefix = prefix + "├── "
	}
	builder.WriteString(linePrefix + node.label + "\n")

	var childPrefix string
	if isRoot {
		childPrefix = ""
	} else if isLast {
		childPrefix = prefix + "    "
	} else {
		childPrefix = prefix + "│   "
	}
	for i, child := range node.children {
		f.formatNode(builder, child, childPrefix, i == len(node.children)-1, false)
	}
}

func (f *TreeFormatter) stateText(state string) string {
	switch state {
	case "PROCESSING":
		return f.color("\033[32m", state)
	case "PAUSED":
		return f.color("\033[33m", state)
	default:
		return state
	}
}

func (f *TreeFormatter) color(code, text string) string {
	if !f.useColors {
		return text
	}
	return code + text + "\033[0m"
}

// progressBar draws progress in [0,1] as a fixed-width bar
func progressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
