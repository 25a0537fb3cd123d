package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAPI(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("users", "GET", OutcomeOK))

	ObserveAPI("users", "GET", OutcomeOK, time.Now())

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("users", "GET", OutcomeOK))
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}
