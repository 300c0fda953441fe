package hub

import "expvar"

var (
	metricConnectionsActive = expvar.NewInt("ws_connections_active")
	metricMessagesIn        = expvar.NewInt("ws_messages_in_total")
	metricBroadcast         = expvar.NewInt("ws_broadcast_total")
	metricPruned            = expvar.NewInt("ws_pruned_total")
	metricGamesActive       = expvar.NewInt("hub_games_active")
)
