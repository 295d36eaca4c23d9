package attendance

import "time"

const (
	WorkUpcoming     = "UPCOMING"
	WorkNotClockedIn = "NOT_CLOCKED_IN"
	WorkAbsent       = "ABSENT"
	WorkWorking      = "WORKING"
	WorkCompleted    = "COMPLETED"
	WorkCancelled    = "CANCELLED"
)

type ShiftWindow struct {
	Start     time.Time
	End       time.Time
	Cancelled bool
}

type WorkStatus struct {
	Status         string `json:"status"`
	Punctuality    string `json:"punctuality,omitempty"`
	WorkingMinutes int    `json:"working_minutes"`
}

// DeriveWorkStatus reports where a shift stands at now given its attendance, if any.
func DeriveWorkStatus(shift ShiftWindow, att *Attendance, now time.Time, grace time.Duration) WorkStatus {
	if att == nil {
		switch {
		case shift.Cancelled:
			return WorkStatus{Status: WorkCancelled}
		case now.Before(shift.Start):
			return WorkStatus{Status: WorkUpcoming}
		case now.After(shift.End):
			return WorkStatus{Status: WorkAbsent}
		default:
			return WorkStatus{Status: WorkNotClockedIn}
		}
	}

	ws := WorkStatus{Punctuality: Punctuality(shift.Start, att.ClockIn, grace)}
	if att.ClockOut == nil {
		ws.Status = WorkWorking
		ws.WorkingMinutes = WorkingMinutes(att.ClockIn, now)
		return ws
	}
	ws.Status = WorkCompleted
	ws.WorkingMinutes = WorkingMinutes(att.ClockIn, *att.ClockOut)
	return ws
}

// Punctuality is ON_TIME up to and including start+grace, LATE after.
func Punctuality(start, clockIn time.Time, grace time.Duration) string {
	if clockIn.After(start.Add(grace)) {
		return StatusLate
	}
	return StatusOnTime
}

// WorkingMinutes floors the elapsed time to whole minutes and never goes negative.
func WorkingMinutes(in, out time.Time) int {
	d := out.Sub(in)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
