package proc

const (
	proc       = "/proc"
	procStat   = "stat"
	procUptime = "uptime"
)

// UserHZ is the number of clock ticks per second used by the kernel in the
// stat files.
const UserHZ = 100
