package timescaledb

// Hypertables must include the partitioning column in the primary key,
// hence the composite (completed_at, run_id) key.
const createTableSQL = `CREATE TABLE IF NOT EXISTS analysis_runs (
	completed_at      TIMESTAMPTZ NOT NULL,
	run_id            TEXT NOT NULL,
	source_name       TEXT NOT NULL,
	signal_type       TEXT NOT NULL,
	sample_count      INT,
	sample_rate_hz    FLOAT8,
	dominant_freq_hz  FLOAT8,
	alpha_dominant    BOOLEAN DEFAULT false,
	degraded          BOOLEAN DEFAULT false,
	peak_count        INT,
	mean_hr           FLOAT8,
	min_hr            FLOAT8,
	max_hr            FLOAT8,
	sdnn_ms           FLOAT8,
	insufficient_data BOOLEAN DEFAULT false,
	peaks             JSONB DEFAULT '[]',
	rr_intervals      JSONB DEFAULT '[]',
	psd_freqs         JSONB DEFAULT '[]',
	psd_power         JSONB DEFAULT '[]',
	PRIMARY KEY (completed_at, run_id)
);`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb;`

const createHypertableSQL = `SELECT create_hypertable('analysis_runs', 'completed_at', if_not_exists => TRUE);`

const createLatestRunViewSQL = `CREATE OR REPLACE VIEW analysis_runs_latest AS
SELECT DISTINCT ON (source_name) *
FROM analysis_runs
ORDER BY source_name, completed_at DESC;`

const create1hHeartRateViewSQL = `CREATE MATERIALIZED VIEW IF NOT EXISTS heart_rate_1h
WITH (timescaledb.continuous) AS
SELECT
	source_name,
	time_bucket('1 hour', completed_at) AS bucket,
	avg(mean_hr)  AS mean_hr,
	min(min_hr)   AS min_hr,
	max(max_hr)   AS max_hr,
	avg(sdnn_ms)  AS sdnn_ms,
	count(*)      AS runs
FROM analysis_runs
WHERE signal_type = 'ecg' AND NOT insufficient_data
GROUP BY source_name, bucket
WITH NO DATA;`

const addAggregationPolicy1hSQL = `SELECT add_continuous_aggregate_policy('heart_rate_1h',
	start_offset => INTERVAL '3 hours',
	end_offset => INTERVAL '1 hour',
	schedule_interval => INTERVAL '1 hour',
	if_not_exists => TRUE);`
