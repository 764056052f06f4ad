package trafficlog

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// After appending capacity + k entries, the log must hold exactly the last
// capacity entries in insertion order, oldest-first.
func TestBoundedFIFOProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("length never exceeds capacity and eviction is strict FIFO", prop.ForAll(
		func(capacity int, k int) bool {
			l := New(capacity)
			total := capacity + k
			for i := 0; i < total; i++ {
				l.Log("message", strconv.Itoa(i), "", nil)
			}

			if l.Count() != capacity {
				return false
			}
			entries := l.All()
			for i, entry := range entries {
				if entry.FromSid != strconv.Itoa(total-capacity+i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 50),
		gen.IntRange(0, 100),
	))

	properties.Property("count never exceeds capacity mid-stream", prop.ForAll(
		func(capacity int, appends int) bool {
			l := New(capacity)
			for i := 0; i < appends; i++ {
				l.Log("message", "", "", nil)
				if l.Count() > capacity {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 60),
	))

	properties.TestingRun(t)
}
