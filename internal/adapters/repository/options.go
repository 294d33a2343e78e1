package repository

// Option applies a configuration option to the ScoreStore.
type Option func(*ScoreStore)

// WithShardCount splits the store into n independently locked shards.
func WithShardCount(n int) Option {
	return func(s *ScoreStore) {
		if n > 0 {
			s.shardCount = n
		}
	}
}
