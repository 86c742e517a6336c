// Package postgres implements the PostgreSQL persistence layer.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE READING
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create reading tables
-- Version: 001

-- Daily reads: the assigned material and its quiz pass threshold
CREATE TABLE IF NOT EXISTS daily_reads (
    id UUID PRIMARY KEY,
    title VARCHAR(200) NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    category VARCHAR(100) NOT NULL DEFAULT '',
    minimal_correct_answer INTEGER NOT NULL DEFAULT 0,
    read_date DATE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_minimal_correct CHECK (minimal_correct_answer >= 0)
);

CREATE INDEX IF NOT EXISTS idx_daily_reads_read_date ON daily_reads(read_date DESC);
CREATE INDEX IF NOT EXISTS idx_daily_reads_category ON daily_reads(category);

-- Reading reports: user progress reports, the source of ReadingExp grants
CREATE TABLE IF NOT EXISTS reading_reports (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    resource_id UUID NOT NULL,
    current_page INTEGER NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_current_page CHECK (current_page >= 0)
);

CREATE INDEX IF NOT EXISTS idx_reading_reports_user_id ON reading_reports(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reading_reports_resource ON reading_reports(resource_id);

-- Distinct category names collected from daily reads, unique ignoring case
CREATE TABLE IF NOT EXISTS reading_categories (
    id UUID PRIMARY KEY,
    category_name VARCHAR(100) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_reading_categories_name ON reading_categories(LOWER(category_name));
`

const migration001Down = `
DROP TABLE IF EXISTS reading_categories;
DROP TABLE IF EXISTS reading_reports;
DROP TABLE IF EXISTS daily_reads;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE QUIZ
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create quiz tables
-- Version: 002

-- Questions belong to a daily read and are ordered by question_seq
CREATE TABLE IF NOT EXISTS quiz_questions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    daily_read_id UUID NOT NULL REFERENCES daily_reads(id) ON DELETE CASCADE,
    question_seq INTEGER NOT NULL,
    question TEXT NOT NULL,
    correct_answer TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_question_seq CHECK (question_seq >= 1),
    UNIQUE(daily_read_id, question_seq)
);

CREATE INDEX IF NOT EXISTS idx_quiz_questions_daily_read ON quiz_questions(daily_read_id, question_seq);

-- Answers are append-only; each retry of a question gets a new retry_seq.
-- The unique constraint is what makes retry_seq allocation race-safe.
CREATE TABLE IF NOT EXISTS quiz_answers (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    daily_read_id UUID NOT NULL REFERENCES daily_reads(id) ON DELETE CASCADE,
    question_seq INTEGER NOT NULL,
    retry_seq INTEGER NOT NULL,
    answer TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_answer_seq CHECK (question_seq >= 1 AND retry_seq >= 1),
    UNIQUE(user_id, daily_read_id, question_seq, retry_seq)
);

CREATE INDEX IF NOT EXISTS idx_quiz_answers_user_read ON quiz_answers(user_id, daily_read_id);
`

const migration002Down = `
DROP TABLE IF EXISTS quiz_answers;
DROP TABLE IF EXISTS quiz_questions;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE STREAKS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create streak log table
-- Version: 003

-- One row per user per reading day. The unique constraint is the source of
-- truth for "at most one streak credit per day"; application checks are
-- only a fast path.
CREATE TABLE IF NOT EXISTS streak_logs (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    streak_date DATE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(user_id, streak_date)
);

CREATE INDEX IF NOT EXISTS idx_streak_logs_user_date ON streak_logs(user_id, streak_date DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS streak_logs;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE EXP
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create exp ledger and snapshot tables
-- Version: 004

-- Append-only exp ledger.
-- (user_id, event_seq) keeps the per-user sequence gapless under races;
-- (user_id, event_kind, ref_id) is the idempotence guard for grants.
CREATE TABLE IF NOT EXISTS user_exp_events (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    event_seq BIGINT NOT NULL,
    exp_amount INTEGER NOT NULL,
    event_kind VARCHAR(30) NOT NULL,
    ref_id UUID NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_event_seq CHECK (event_seq >= 1),
    CONSTRAINT valid_exp_amount CHECK (exp_amount >= 0),
    CONSTRAINT valid_event_kind CHECK (event_kind IN ('ReadingExp', 'DailyReadsExp', 'StreakExp')),
    UNIQUE(user_id, event_seq),
    UNIQUE(user_id, event_kind, ref_id)
);

CREATE INDEX IF NOT EXISTS idx_user_exp_events_user_seq ON user_exp_events(user_id, event_seq DESC);

-- Running-total projection, one row per user, updated in the same
-- transaction as the ledger append
CREATE TABLE IF NOT EXISTS user_exp_snapshots (
    user_id UUID PRIMARY KEY,
    snapshot_seq BIGINT NOT NULL DEFAULT 1,
    last_seq BIGINT NOT NULL,
    total_exp INTEGER NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_total_exp CHECK (total_exp >= 0)
);
`

const migration004Down = `
DROP TABLE IF EXISTS user_exp_snapshots;
DROP TABLE IF EXISTS user_exp_events;
`
