package httptransport

import "expvar"

var (
	metricGameCreateTotal  = expvar.NewInt("game_create_total")
	metricGameCreateErrors = expvar.NewInt("game_create_errors_total")

	replayQueryTotal       = expvar.NewInt("replay_query_total")
	replayQueryErrorsTotal = expvar.NewInt("replay_query_errors_total")
	replayQueryLastMS      = expvar.NewInt("replay_query_last_ms")
)
