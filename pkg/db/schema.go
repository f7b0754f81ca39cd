package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Pages table: one row per canonical URL
CREATE TABLE IF NOT EXISTS pages (
    url TEXT PRIMARY KEY,
    last_visit_time TEXT NOT NULL,  -- RFC 3339, UTC
    raw_content BLOB,
    fields TEXT NOT NULL DEFAULT '{}',  -- extracted fields as a JSON object

    -- Copied out of fields for filtering without JSON parsing
    scraper TEXT,
    style TEXT,

    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pages_style ON pages(style);
CREATE INDEX IF NOT EXISTS idx_pages_last_visit ON pages(last_visit_time);

-- Crawl runs: one row per crawl command invocation
CREATE TABLE IF NOT EXISTS crawl_runs (
    run_id TEXT PRIMARY KEY,
    seed TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    status TEXT NOT NULL DEFAULT 'running',  -- running, completed, interrupted, failed
    pages_fetched INTEGER DEFAULT 0,
    fetch_errors INTEGER DEFAULT 0,
    pages_stored INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_crawl_runs_started ON crawl_runs(started_at);
`
