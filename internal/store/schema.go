package store

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

-- Extraction results keyed by the SHA-256 of the image bytes and the extractor variant
CREATE TABLE IF NOT EXISTS extractions (
    digest TEXT NOT NULL,
    variant TEXT NOT NULL,              -- extractor options the result was produced with
    source TEXT NOT NULL,
    status INTEGER NOT NULL,
    extraction TEXT NOT NULL,           -- JSON encoded extraction
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (digest, variant)
);

CREATE INDEX IF NOT EXISTS idx_extractions_status ON extractions(status);
`
