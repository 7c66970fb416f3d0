package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Poster hands an Intent to whatever displays notifications.
type Poster interface {
	Post(ctx context.Context, in Intent) error
}

// LogPoster writes intents to the log. It is the default for headless hosts.
type LogPoster struct {
	Logger *zerolog.Logger // nil means the global logger
}

func (p LogPoster) Post(_ context.Context, in Intent) error {
	lg := log.Logger
	if p.Logger != nil {
		lg = *p.Logger
	}
	ev := lg.Info().Str("action", in.Action)
	for k, v := range in.Extras {
		if k == ExtraNotificationBody {
			ev = ev.Int(k+"_len", len(v))
			continue
		}
		ev = ev.Str(k, v)
	}
	ev.Msg("notification posted")
	return nil
}

// ChanPoster sends intents on C. Post blocks until the intent is received or
// ctx is done.
type ChanPoster struct {
	C chan Intent
}

// NewChanPoster returns a ChanPoster with a buffer of size n.
func NewChanPoster(n int) *ChanPoster {
	return &ChanPoster{C: make(chan Intent, n)}
}

func (p *ChanPoster) Post(ctx context.Context, in Intent) error {
	select {
	case p.C <- in.Clone():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
