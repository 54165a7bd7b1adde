package canvas

// Status is the stage of the generation pipeline a session is in.
type Status string

// Session statuses.
const (
	StatusIdle        Status = "idle"
	StatusPlanning    Status = "planning"
	StatusBuilding    Status = "building"
	StatusStructuring Status = "structuring"
	StatusEnhancing   Status = "enhancing"
	StatusReady       Status = "ready"
	StatusError       Status = "error"
)

// Busy reports whether a generation call is in flight.
func (s Status) Busy() bool {
	switch s {
	case StatusPlanning, StatusBuilding, StatusStructuring, StatusEnhancing:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }
