package scheduler

import "github.com/jackc/pgx/v4/pgxpool"

// PgxPoolStats samples pool occupancy for the pool stats job.
func PgxPoolStats(pool *pgxpool.Pool) PoolStat {
	return func() (int32, int32, int32) {
		st := pool.Stat()
		return st.TotalConns(), st.IdleConns(), st.AcquiredConns()
	}
}
