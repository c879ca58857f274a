package schedule

// LaneID identifies a parallel track on the board.
type LaneID string

const (
	LaneGlobal LaneID = "global"
	Lane1      LaneID = "lane1"
	Lane2      LaneID = "lane2"
)

// LaneOrder is the left-to-right order of lanes on the grid.
var LaneOrder = []LaneID{LaneGlobal, Lane1, Lane2}

// defaultLaneNames are the names a lane starts with and returns to on reset.
var defaultLaneNames = map[LaneID]string{
	LaneGlobal: "全体",
	Lane1:      "他1",
	Lane2:      "他2",
}

// Lane name length limits, in characters.
const (
	MinLaneNameLen = 1
	MaxLaneNameLen = 20
)

// Lane is one column of the schedule.
type Lane struct {
	ID       LaneID `json:"id"`
	Name     string `json:"name"`
	Editable bool   `json:"editable"`
}

// Block is a placed activity. MenuID is empty for manually placed blocks;
// Title is copied from the menu at placement time.
type Block struct {
	ID          string `json:"id"`
	MenuID      string `json:"menu_id,omitempty"`
	Title       string `json:"title"`
	LaneID      LaneID `json:"lane_id"`
	Start       string `json:"start"`
	DurationMin int    `json:"duration_min"`
}

// Session is the practice metadata. Start and End may be blank.
type Session struct {
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
}

// HasWindow reports whether both ends of the time window are set.
func (s Session) HasWindow() bool {
	return s.Start != "" && s.End != ""
}
