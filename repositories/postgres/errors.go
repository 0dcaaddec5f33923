package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/upb/postboard/repositories"
)

// uniqueViolation is the SQLSTATE for unique_violation
const uniqueViolation = "23505"

// wrapWriteError converts driver errors into repository sentinels where possible
func wrapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pqErr.Constraint, repositories.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
