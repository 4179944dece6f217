package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "robofleet"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanMutations — канал трансляции закоммиченных мутаций между
	// инстансами реестра. Каждый инстанс публикует свои события и слушает чужие.
	RedisChanMutations = RedisNamespace + ":mutations"
)
