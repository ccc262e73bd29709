package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDomainCounters(t *testing.T) {
	Init()

	rowsBefore := testutil.ToFloat64(rowsServedTotal.WithLabelValues("metrics-test"))
	RowsServed("metrics-test", 3)
	RowsServed("metrics-test", 0)
	if got := testutil.ToFloat64(rowsServedTotal.WithLabelValues("metrics-test")); got != rowsBefore+3 {
		t.Fatalf("expected rows served +3, got %f", got-rowsBefore)
	}

	errBefore := testutil.ToFloat64(storageErrorsTotal.WithLabelValues("metrics-test"))
	ObserveQuery("metrics-test", 10*time.Millisecond, nil)
	ObserveQuery("metrics-test", 10*time.Millisecond, errors.New("down"))
	if got := testutil.ToFloat64(storageErrorsTotal.WithLabelValues("metrics-test")); got != errBefore+1 {
		t.Fatalf("expected one storage error, got %f", got-errBefore)
	}

	droppedBefore := testutil.ToFloat64(csvColumnsDroppedTotal.WithLabelValues("metrics-test"))
	ColumnsDropped("metrics-test", 2)
	if got := testutil.ToFloat64(csvColumnsDroppedTotal.WithLabelValues("metrics-test")); got != droppedBefore+2 {
		t.Fatalf("expected two dropped columns, got %f", got-droppedBefore)
	}

	snapBefore := testutil.ToFloat64(snapshotsTotal.WithLabelValues("metrics-test", "ok"))
	ObserveSnapshot("metrics-test", "ok")
	if got := testutil.ToFloat64(snapshotsTotal.WithLabelValues("metrics-test", "ok")); got != snapBefore+1 {
		t.Fatalf("expected one snapshot, got %f", got-snapBefore)
	}
}
