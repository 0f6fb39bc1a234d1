package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("/api/cells")
	})
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequests.WithLabelValues("/api/cells")), 1.0)

	before := testutil.ToFloat64(rentalsCreated)
	IncRentalCreated()
	assert.Equal(t, before+1, testutil.ToFloat64(rentalsCreated))
}
