package spacedrep

// BaseIntervals defines the expanding interval schedule in days.
// Stage 0 = first review after an idea reaches full coverage.
var BaseIntervals = []int{1, 3, 7, 14, 30, 60}

// MaxStage is the highest stage index in BaseIntervals.
const MaxStage = 5

// GraduationStage is the consecutive-hit count at which an idea
// graduates to the long fixed interval.
const GraduationStage = 6

// GraduatedIntervalDays is the review interval for graduated ideas.
const GraduatedIntervalDays = 90
