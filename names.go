package pebb

//
// Port naming (for log messages)
//

import (
	"fmt"
	"sync/atomic"
)

// portID is the unique ID of each stage port.
var portID = &atomic.Int64{}

// newPortName constructs a new, unique name for a [StagePort].
func newPortName() string {
	return fmt.Sprintf("pb%d", portID.Add(1))
}
