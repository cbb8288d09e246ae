package gallery

import (
	"testing"
	"time"
)

func TestBlobName(t *testing.T) {
	tests := []struct {
		filePath string
		expected string
	}{
		{"1700000000000.jpeg", "1700000000000.jpeg"},
		{"file:///data/user/0/app/files/1700000000000.jpeg", "1700000000000.jpeg"},
		{"s3://photos/1700000000000.jpeg", "1700000000000.jpeg"},
		{"dir/", ""},
	}

	for _, tc := range tests {
		t.Run(tc.filePath, func(t *testing.T) {
			got := PhotoRecord{FilePath: tc.filePath}.BlobName()
			if got != tc.expected {
				t.Errorf("BlobName(%q) = %q, want %q", tc.filePath, got, tc.expected)
			}
		})
	}
}

func TestNamerSameMillisecond(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	n := NewNamer(func() time.Time { return frozen })

	first := n.Next()
	second := n.Next()

	if first != "1700000000000.jpeg" {
		t.Errorf("first = %q", first)
	}
	if second != "1700000000001.jpeg" {
		t.Errorf("second = %q, want the next millisecond", second)
	}
}

func TestNamerClockGoesBackwards(t *testing.T) {
	times := []int64{5000, 4000, 6000}
	i := 0
	n := NewNamer(func() time.Time {
		t := time.UnixMilli(times[i])
		i++
		return t
	})

	got := []string{n.Next(), n.Next(), n.Next()}
	want := []string{"5000.jpeg", "5001.jpeg", "6000.jpeg"}
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("name %d = %q, want %q", k, got[k], want[k])
		}
	}
}

func TestNamerObserve(t *testing.T) {
	n := NewNamer(func() time.Time { return time.UnixMilli(1000) })

	n.Observe("2000.jpeg")
	n.Observe("1500.jpeg")
	n.Observe("IMG_0001.jpg")

	if got := n.Next(); got != "2001.jpeg" {
		t.Errorf("Next() = %q, want a name after the observed ones", got)
	}
}
