package bus

import "time"

// Event is a payload-less change signal. Receivers re-read the collection
// named by Kind; Key is the storage key that was written, when known.
type Event struct {
	Kind      string
	Key       string
	Remote    bool
	Timestamp time.Time
}
