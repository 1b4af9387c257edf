package db

import (
	"errors"
	"time"

	pgx "github.com/jackc/pgx/v4"

	"github.com/avlasov/userhub/internal/observability/metrics"
)

// HandleQueryError records query duration and maps pgx.ErrNoRows to the
// caller's not-found sentinel. Other errors pass through unchanged.
func HandleQueryError(err error, notFoundErr error, operation, table string, startTime time.Time) error {
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())

	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}
	return err
}
