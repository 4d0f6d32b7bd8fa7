package archive

import "time"

// windowsEpochDelta100ns is the number of 100ns ticks between the Windows
// FILETIME epoch (1601-01-01 UTC) and the Unix epoch (1970-01-01 UTC).
const windowsEpochDelta100ns = 116444736000000000

// FILETIME is a Windows-style timestamp: two little-endian uint32 halves
// counting 100ns ticks since 1601-01-01 UTC.
type FILETIME struct {
	Low  uint32
	High uint32
}

// NowFILETIME returns the current time encoded as a FILETIME, used to stamp
// access/create/modify times on newly written entries.
func NowFILETIME() FILETIME {
	return fromTime(time.Now())
}

func fromTime(t time.Time) FILETIME {
	ticks := uint64(t.UnixNano())/100 + windowsEpochDelta100ns
	return FILETIME{Low: uint32(ticks), High: uint32(ticks >> 32)}
}

// Time converts a FILETIME back to a time.Time in UTC.
func (f FILETIME) Time() time.Time {
	ticks := uint64(f.High)<<32 | uint64(f.Low)
	if ticks < windowsEpochDelta100ns {
		return time.Unix(0, 0).UTC()
	}
	unixNano := (ticks - windowsEpochDelta100ns) * 100
	return time.Unix(0, int64(unixNano)).UTC()
}
