package timer

import (
	"time"

	"github.com/rs/zerolog/log"
)

// TimeTrack logs the time elapsed since start, use it deferred: defer TimeTrack(time.Now(), "diff").
func TimeTrack(start time.Time, name string) time.Duration {
	elapsed := time.Since(start)
	log.Debug().Str("task", name).Dur("took", elapsed).Msgf("%s took %s", name, elapsed)

	return elapsed
}
