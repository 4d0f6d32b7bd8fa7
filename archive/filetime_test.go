package archive

import (
	"testing"
	"time"
)

func TestFILETIMERoundTrip(t *testing.T) {
	want := time.Date(2003, time.January, 15, 12, 30, 0, 0, time.UTC)
	ft := fromTime(want)
	got := ft.Time()
	if !got.Equal(want) {
		t.Errorf("FILETIME round trip = %v, want %v", got, want)
	}
}

func TestFILETIMEBeforeEpochClampsToZero(t *testing.T) {
	ft := FILETIME{Low: 0, High: 0}
	got := ft.Time()
	if got.Unix() != 0 {
		t.Errorf("zero FILETIME decoded to %v, want the Unix epoch", got)
	}
}
