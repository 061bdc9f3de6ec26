package krishimitra

import "time"

// NowFunc is the clock used across the package, swappable in tests.
var NowFunc func() time.Time = time.Now
