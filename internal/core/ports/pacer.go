package ports

import (
	"context"
	"time"
)

// Pacer spaces out catalog calls. Pause returns early with ctx.Err().
type Pacer interface {
	Pause(ctx context.Context, d time.Duration) error
}
