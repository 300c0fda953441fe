package ledger

import "expvar"

var (
	metricAppendTotal     = expvar.NewInt("ledger_append_total")
	metricAppendConflicts = expvar.NewInt("ledger_append_conflicts_total")
	metricAppendErrors    = expvar.NewInt("ledger_append_errors_total")
)
