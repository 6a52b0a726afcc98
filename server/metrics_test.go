// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-compat/internal/concurrency"
	"github.com/momentics/hioload-compat/server"
)

func TestMetrics_ObserverEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := server.NewMetrics(reg)

	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed(10 * time.Millisecond)
	m.AcceptFailed(errors.New("accept: connection reset"))
	m.RequestServed(200)
	m.RequestServed(200)
	m.RequestServed(400)
	m.TaskPanicked("boom")

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP hioload_accept_errors_total Total number of transient accept errors
# TYPE hioload_accept_errors_total counter
hioload_accept_errors_total 1
# HELP hioload_connections_active Number of connections currently being served
# TYPE hioload_connections_active gauge
hioload_connections_active 1
# HELP hioload_connections_opened_total Total number of accepted connections
# TYPE hioload_connections_opened_total counter
hioload_connections_opened_total 2
# HELP hioload_executor_task_panics_total Total number of recovered task panics
# TYPE hioload_executor_task_panics_total counter
hioload_executor_task_panics_total 1
# HELP hioload_requests_total Total number of served requests
# TYPE hioload_requests_total counter
hioload_requests_total{code="200"} 2
hioload_requests_total{code="400"} 1
`),
		"hioload_accept_errors_total",
		"hioload_connections_active",
		"hioload_connections_opened_total",
		"hioload_executor_task_panics_total",
		"hioload_requests_total",
	)
	require.NoError(t, err)
	n, err := testutil.GatherAndCount(reg, "hioload_connection_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_ExecutorGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := server.NewMetrics(reg)

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP hioload_executor_workers Number of live executor workers
# TYPE hioload_executor_workers gauge
hioload_executor_workers 0
`), "hioload_executor_workers")
	require.NoError(t, err)

	exec := concurrency.NewExecutor(3)
	defer exec.Close()
	m.WatchExecutor(exec)

	err = testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP hioload_executor_workers Number of live executor workers
# TYPE hioload_executor_workers gauge
hioload_executor_workers 3
`), "hioload_executor_workers")
	require.NoError(t, err)
}
