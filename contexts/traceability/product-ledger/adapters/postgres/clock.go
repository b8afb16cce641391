package postgresadapter

import "time"

// SystemClock satisfies the Clock port with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
