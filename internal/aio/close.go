package aio

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Close closes the given closer and logs a failure. Meant for deferred calls where the
// close error can't be returned.
func Close(c io.Closer) {
	if err := c.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close resource")
	}
}

// CloseWithErr closes the given closer and reports the close error through err.
// An already existing error is kept and wrapped with the close error message.
func CloseWithErr(c io.Closer, err *error) {
	cErr := c.Close()
	if cErr == nil {
		return
	}

	if *err == nil {
		*err = cErr
	} else {
		*err = errors.Wrap(*err, cErr.Error())
	}
}
