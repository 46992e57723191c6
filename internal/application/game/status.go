package game

import (
	"sort"
	"strings"
	"time"

	"github.com/andrescamacho/outpost-go/internal/domain/crafting"
	"github.com/andrescamacho/outpost-go/internal/domain/progression"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
	"github.com/andrescamacho/outpost-go/internal/domain/world"
)

// NodeView is a discovered node as shown to the player
type NodeView struct {
	ID              string              `json:"id"`
	Type            shared.ResourceType `json:"type"`
	DisplayName     string              `json:"displayName"`
	Position        shared.Position     `json:"position"`
	Capacity        int                 `json:"capacity"`
	RemainingAmount int                 `json:"remainingAmount"`
	Distance        float64             `json:"distance"`
}

// MachineView is the presentation form of a machine
type MachineView struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	State          string  `json:"state"`
	AssignedNodeID string  `json:"assignedNodeId,omitempty"`
	RecipeID       string  `json:"recipeId,omitempty"`
	Batch          int     `json:"batch,omitempty"`
	Progress       float64 `json:"progress"`
	Remaining      string  `json:"remaining,omitempty"`
	UnitsDone      int     `json:"unitsDone,omitempty"`
	UnitsTotal     int     `json:"unitsTotal,omitempty"`
	QueueLength    int     `json:"queueLength"`
}

// ToastView is a milestone toast waiting to be shown
type ToastView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AchievedAt  time.Time `json:"achievedAt"`
}

// StatusView is everything a client needs to draw the game
type StatusView struct {
	Profile          string                      `json:"profile"`
	Seed             int64                       `json:"seed"`
	Position         shared.Position             `json:"position"`
	Chunk            world.ChunkCoord            `json:"chunk"`
	Discovered       []NodeView                  `json:"discovered"`
	PinnedNodeID     string                      `json:"pinnedNodeId,omitempty"`
	PendingDiscovery int                         `json:"pendingDiscovery"`
	Machines         []MachineView               `json:"machines"`
	Inventory        map[shared.ResourceType]int `json:"inventory"`
	Toasts           []ToastView                 `json:"toasts"`
	Milestones       []string                    `json:"milestones"`
	SaveBreaker      string                      `json:"saveBreaker"`
	SavePending      bool                        `json:"savePending"`
	At               time.Time                   `json:"at"`
}

// Status builds the presentation view of the whole game
func (s *Session) Status() (StatusView, error) {
	rt, err := s.Runtime()
	if err != nil {
		return StatusView{}, err
	}

	pos := rt.Discovery.Position()
	view := StatusView{
		Profile:          s.save.Keys().Profile(),
		Seed:             rt.Seed,
		Position:         pos,
		Chunk:            rt.Indexer.ChunkOf(pos),
		PinnedNodeID:     rt.Discovery.Pinned(),
		PendingDiscovery: rt.Discovery.PendingCount(),
		Inventory:        rt.Workshop.Inventory().Snapshot(),
		SaveBreaker:      s.save.BreakerState().String(),
		SavePending:      s.save.HasPending(),
		At:               s.clock.Now(),
	}

	view.Discovered = s.discoveredViews(rt, pos)
	for _, st := range rt.Workshop.Status() {
		view.Machines = append(view.Machines, NewMachineView(st))
	}
	for _, t := range rt.Tracker.PendingToasts() {
		view.Toasts = append(view.Toasts, ToastView{
			ID:          string(t.ID),
			Title:       t.Title,
			Description: t.Description,
			AchievedAt:  t.AchievedAt,
		})
	}
	for id := range rt.Tracker.Achieved() {
		view.Milestones = append(view.Milestones, string(id))
	}
	sort.Strings(view.Milestones)
	return view, nil
}

// discoveredViews lists discovered nodes nearest first, ties by id
func (s *Session) discoveredViews(rt *Runtime, from shared.Position) []NodeView {
	ids := rt.Discovery.Discovered()
	views := make([]NodeView, 0, len(ids))
	for _, id := range ids {
		node, err := rt.Nodes.Lookup(id)
		if err != nil {
			continue
		}
		views = append(views, nodeView(node, from))
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Distance != views[j].Distance {
			return views[i].Distance < views[j].Distance
		}
		return views[i].ID < views[j].ID
	})
	return views
}

func nodeView(node world.ResourceNode, from shared.Position) NodeView {
	return NodeView{
		ID:              node.ID,
		Type:            node.Type,
		DisplayName:     node.DisplayName,
		Position:        node.Position,
		Capacity:        node.Capacity,
		RemainingAmount: node.RemainingAmount,
		Distance:        from.DistanceTo(node.Position),
	}
}

// NewMachineView converts a workshop status to its presentation form
func NewMachineView(st crafting.MachineStatus) MachineView {
	return MachineView{
		ID:             st.MachineID,
		Type:           string(st.MachineType),
		State:          string(st.State),
		AssignedNodeID: st.AssignedNodeID,
		RecipeID:       st.RecipeID,
		Batch:          st.Batch,
		Progress:       st.Progress,
		Remaining:      st.RemainingText,
		UnitsDone:      st.UnitsDone,
		UnitsTotal:     st.UnitsTotal,
		QueueLength:    st.QueueLength,
	}
}

// ChunkView renders one chunk as text rows for terminal clients
type ChunkView struct {
	Coord world.ChunkCoord `json:"coord"`
	Rows  []string         `json:"rows"`
	Nodes []NodeView       `json:"nodes"`
}

// Chunk renders a chunk. Only discovered nodes are shown; '@' marks the
// player.
func (s *Session) Chunk(coord world.ChunkCoord) (ChunkView, error) {
	rt, err := s.Runtime()
	if err != nil {
		return ChunkView{}, err
	}

	pos := rt.Discovery.Position()
	side := int64(rt.Indexer.ChunkSize())
	originX, originY := coord.X*side, coord.Y*side

	view := ChunkView{Coord: coord}
	visible := map[shared.Position]world.ResourceNode{}
	for _, node := range rt.Indexer.NodesInChunk(coord) {
		if rt.Discovery.IsDiscovered(node.ID) {
			visible[node.Position] = node
			view.Nodes = append(view.Nodes, nodeView(node, pos))
		}
	}

	for y := originY; y < originY+side; y++ {
		var row strings.Builder
		for x := originX; x < originX+side; x++ {
			p := shared.NewPosition(x, y)
			switch node, ok := visible[p]; {
			case p == pos:
				row.WriteRune('@')
			case ok && node.IsExhausted():
				row.WriteRune('x')
			case ok:
				row.WriteRune(nodeGlyph(node.Type))
			default:
				row.WriteRune(rt.Generator.TileAt(x, y).Terrain.Glyph())
			}
		}
		view.Rows = append(view.Rows, row.String())
	}
	return view, nil
}

func nodeGlyph(t shared.ResourceType) rune {
	switch t {
	case shared.IronOre:
		return 'I'
	case shared.CopperOre:
		return 'C'
	case shared.Coal:
		return 'K'
	case shared.Stone:
		return 'S'
	case shared.Quartz:
		return 'Q'
	default:
		return '?'
	}
}

// AcknowledgeToast marks a milestone toast as shown
func (s *Session) AcknowledgeToast(id progression.MilestoneID) error {
	rt, err := s.Runtime()
	if err != nil {
		return err
	}
	return rt.Tracker.MarkToastShown(id)
}

// Ack is the response of commands that return nothing but a confirmation
type Ack struct {
	Message string `json:"message"`
}
