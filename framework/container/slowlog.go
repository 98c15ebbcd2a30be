package container

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// maybeSlowlog reports the whole timing table when one component's self-time
// or the build as a whole crossed its threshold. It never affects the build.
func (l *Loader[C]) maybeSlowlog(total time.Duration) {
	timing := l.Timing()

	slow := total > l.opts.slowTotal
	for _, d := range timing {
		if d > l.opts.slowComponent {
			slow = true
			break
		}
	}
	if !slow {
		return
	}

	l.opts.log().Info(fmt.Sprintf("Slow registry load, took %dms", total.Milliseconds()),
		zap.String("build", l.state.id),
		zap.Any("timing", formatTiming(timing)),
		zap.String("total", fmt.Sprintf("%.3fms", millis(total))),
	)
}

func formatTiming(timing map[string]time.Duration) map[string]string {
	out := make(map[string]string, len(timing))
	for k, d := range timing {
		if d == InProgress {
			out[k] = "in progress"
			continue
		}
		out[k] = fmt.Sprintf("%.3fms", millis(d))
	}
	return out
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
