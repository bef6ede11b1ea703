package repository

import (
	"errors"

	"github.com/lib/pq"

	"github.com/yourorg/chairtime/internal/domain"
)

// SQLSTATE codes the repositories care about.
const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
)

// mapConstraintErr translates constraint violations into domain errors. The
// exclusion constraint on bookings is the primary signal the conflict
// resolver depends on, so it must never be swallowed.
func mapConstraintErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqExclusionViolation:
			return domain.ErrOverlap
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
