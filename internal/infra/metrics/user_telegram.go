package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesTotal,
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
	)
}

var (
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_total",
			Help: "Incoming updates by kind (message, callback) and chat type.",
		},
		[]string{"kind", "chat_type"},
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands and callback routes.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)
)

func IncTelegramUpdate(kind, chatType string) {
	telegramUpdatesTotal.WithLabelValues(norm(kind), norm(chatType)).Inc()
}

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}
