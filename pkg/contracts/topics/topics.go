package topics

const (
	// Feed do fornecedor: um tópico por produto (prematch, inplay)
	FeedMessagesPrefix = "feed_messages_"

	// Notificações para o publisher externo (Redis Pub/Sub)
	ChannelBalancePrefix = "balance_"
	ChannelMarketPrefix  = "market_"
)

// FeedTopic retorna o nome do tópico Kafka de um produto do feed.
func FeedTopic(prefix, product string) string {
	return prefix + product
}
