package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recipes", "200"))
	RecordAPIRequest("GET", "/api/v1/recipes", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recipes", "200"))
	if after-before != 1 {
		t.Errorf("requests delta = %v, want 1", after-before)
	}
}

func TestRecordCook(t *testing.T) {
	before := testutil.ToFloat64(RecipesCookedTotal.WithLabelValues("missing", "false"))
	queuedBefore := testutil.ToFloat64(ShoppingItemsQueuedTotal)

	RecordCook("missing", false, 3)

	if d := testutil.ToFloat64(RecipesCookedTotal.WithLabelValues("missing", "false")) - before; d != 1 {
		t.Errorf("cooked delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(ShoppingItemsQueuedTotal) - queuedBefore; d != 3 {
		t.Errorf("queued delta = %v, want 3", d)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("memory"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("memory"))

	RecordCacheLookup("memory", true)
	RecordCacheLookup("memory", false)
	RecordCacheLookup("memory", false)

	if d := testutil.ToFloat64(CacheHits.WithLabelValues("memory")) - hits; d != 1 {
		t.Errorf("hits delta = %v", d)
	}
	if d := testutil.ToFloat64(CacheMisses.WithLabelValues("memory")) - misses; d != 2 {
		t.Errorf("misses delta = %v", d)
	}
}
