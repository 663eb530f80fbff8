package enum

import "encoding/json"

// ExpiryStatus is derived from a batch's expiry date at a point in time
type ExpiryStatus int

const (
	ExpiryStatusNone ExpiryStatus = iota
	ExpiryStatusFresh
	ExpiryStatusExpiringSoon
	ExpiryStatusExpired
)

func (s ExpiryStatus) String() string {
	names := [...]string{"none", "fresh", "expiring_soon", "expired"}
	if int(s) < 0 || int(s) >= len(names) {
		return "none"
	}
	return names[s]
}

func (s ExpiryStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
