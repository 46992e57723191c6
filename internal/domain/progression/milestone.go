package progression

// MilestoneID identifies an achievement
type MilestoneID string

const (
	FirstDiscovery  MilestoneID = "first_discovery"
	TenDiscoveries  MilestoneID = "ten_discoveries"
	FirstMachine    MilestoneID = "first_machine"
	FirstCraft      MilestoneID = "first_craft"
	FirstExtraction MilestoneID = "first_extraction"
	NodeExhausted   MilestoneID = "node_exhausted"
)

// Milestone is a one-time achievement with the toast text shown for it
type Milestone struct {
	ID          MilestoneID
	Title       string
	Description string
	reached     func(Stats) bool
}

// Stats are the counters milestones are evaluated against
type Stats struct {
	Discovered      int
	MachinesPlaced  int
	CraftsCompleted int
	Extractions     int
	ExhaustedNodes  int
}

var milestones = []Milestone{
	{
		ID:          FirstDiscovery,
		Title:       "Prospector",
		Description: "Discovered your first resource node",
		reached:     func(s Stats) bool { return s.Discovered >= 1 },
	},
	{
		ID:          TenDiscoveries,
		Title:       "Surveyor",
		Description: "Discovered ten resource nodes",
		reached:     func(s Stats) bool { return s.Discovered >= 10 },
	},
	{
		ID:          FirstMachine,
		Title:       "Builder",
		Description: "Placed your first machine",
		reached:     func(s Stats) bool { return s.MachinesPlaced >= 1 },
	},
	{
		ID:          FirstCraft,
		Title:       "Artisan",
		Description: "Completed your first crafting job",
		reached:     func(s Stats) bool { return s.CraftsCompleted >= 1 },
	},
	{
		ID:          FirstExtraction,
		Title:       "Miner",
		Description: "Extracted resources from a node",
		reached:     func(s Stats) bool { return s.Extractions >= 1 },
	},
	{
		ID:          NodeExhausted,
		Title:       "Strip Mined",
		Description: "Emptied a resource node",
		reached:     func(s Stats) bool { return s.ExhaustedNodes >= 1 },
	},
}

// Milestones lists every milestone in display order
func Milestones() []Milestone {
	return append([]Milestone(nil), milestones...)
}

// Lookup returns the milestone with the given id
func Lookup(id MilestoneID) (Milestone, bool) {
	for _, m := range milestones {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}
