package system

import (
	"fmt"
	"strings"
	"time"
)

// Stage is a point in the frame at which parked routines may resume.
// Stages run in declaration order within a frame.
type Stage int

const (
	StageFixedUpdate Stage = iota // 0: fixed-step physics tick, 0..n per frame
	StageUpdate                   // 1: once per frame
	StageLateUpdate               // 2: after every Update system has run
	StageCleanup                  // 3: deferred destruction, not a routine stage
)

// RoutineStages lists the stages a routine may park on.
var RoutineStages = []Stage{StageFixedUpdate, StageUpdate, StageLateUpdate}

func (s Stage) String() string {
	switch s {
	case StageFixedUpdate:
		return "fixed_update"
	case StageUpdate:
		return "update"
	case StageLateUpdate:
		return "late_update"
	case StageCleanup:
		return "cleanup"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ParseStage accepts the names produced by String. Empty means Update.
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "update":
		return StageUpdate, nil
	case "late_update", "lateupdate":
		return StageLateUpdate, nil
	case "fixed_update", "fixedupdate":
		return StageFixedUpdate, nil
	default:
		return 0, fmt.Errorf("unknown stage %q", name)
	}
}

// System is the interface every frame system implements.
type System interface {
	Stage() Stage
	Update(dt time.Duration)
}
