package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeDateOnly(t *testing.T) {
    got, ok := ParseTime("2024-10-10")
    if !ok {
        t.Fatalf("expected ok")
    }
    if !got.Equal(time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)) {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeRejects(t *testing.T) {
    for _, s := range []string{"", "yesterday", "-5"} {
        if _, ok := ParseTime(s); ok {
            t.Fatalf("expected %q to be rejected", s)
        }
    }
}

func TestParseTimeUnixMillis(t *testing.T) {
    want := time.Date(2024, 10, 10, 10, 10, 10, 250*int(time.Millisecond), time.UTC)
    got, ok := ParseTime(strconv.FormatInt(want.UnixMilli(), 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if !got.Equal(want) {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestFromUnix(t *testing.T) {
    if got := FromUnix(1728555010); got.Unix() != 1728555010 {
        t.Fatalf("seconds misread as %v", got)
    }
    if got := FromUnix(1728555010000); got.Unix() != 1728555010 {
        t.Fatalf("milliseconds misread as %v", got)
    }
}
