// Package closeutil adapts plain cleanup functions to io.Closer and joins
// the errors of closing several things at once.
package closeutil

import (
	"errors"
	"io"
)

// Close adapts a cleanup function with no return value to io.Closer, for
// composing ad-hoc rollback steps (removing a partially-written file,
// releasing a lock) alongside real io.Closers.
type Close func()

var _ io.Closer = Close(nil)

func (c Close) Close() error {
	c()
	return nil
}

// All closes every non-nil closer, in order, and joins whatever errors they
// return. A single failed Close does not stop the rest from running.
func All(closers ...io.Closer) error {
	var errs []error
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
