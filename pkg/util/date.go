package util

import (
    "strconv"
    "time"
)

// unixMillisFloor separates unix seconds from unix milliseconds; second
// timestamps stay below it until the year 5138.
const unixMillisFloor = 1e11

// FromUnix converts unix seconds or milliseconds to a time.
func FromUnix(ts int64) time.Time {
    if ts >= unixMillisFloor {
        return time.UnixMilli(ts)
    }
    return time.Unix(ts, 0)
}

// ParseTime accepts RFC3339, RFC3339Nano, a bare date, or a positive unix
// timestamp in seconds or milliseconds.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    for _, layout := range []string{time.RFC3339, time.RFC3339Nano, time.DateOnly} {
        if t, err := time.Parse(layout, s); err == nil {
            return t, true
        }
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return FromUnix(ts), true
    }
    return time.Time{}, false
}
