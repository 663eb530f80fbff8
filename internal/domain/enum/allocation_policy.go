package enum

import "fmt"

// AllocationPolicy names the order in which a product's batches are drawn down.
type AllocationPolicy string

const (
	// AllocationFEFO serves the batch that expires first; batches without an
	// expiry date go last.
	AllocationFEFO AllocationPolicy = "fefo"
	// AllocationFirstSeen serves batches in the order they were received.
	AllocationFirstSeen AllocationPolicy = "first-seen"
)

func ParseAllocationPolicy(s string) (AllocationPolicy, error) {
	switch AllocationPolicy(s) {
	case AllocationFEFO, "":
		return AllocationFEFO, nil
	case AllocationFirstSeen, "fifo":
		return AllocationFirstSeen, nil
	}
	return "", fmt.Errorf("unknown allocation policy %q", s)
}
