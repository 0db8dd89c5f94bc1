package store

// Schema creates the tables a saved load is written to. Every row carries
// the load_id of the Repository it came from, so loads of the same college
// never overwrite each other and can be dropped one at a time.
const Schema = `
CREATE TABLE IF NOT EXISTS loads (
    load_id    UUID PRIMARY KEY,
    college    TEXT NOT NULL,
    loaded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS loads_college_idx ON loads (college, loaded_at DESC);

CREATE TABLE IF NOT EXISTS majors (
    load_id          UUID NOT NULL REFERENCES loads (load_id) ON DELETE CASCADE,
    major            TEXT NOT NULL,
    requirement_type CHAR(1) NOT NULL CHECK (requirement_type IN ('R', 'E')),
    course           TEXT NOT NULL,
    PRIMARY KEY (load_id, major, requirement_type, course)
);

CREATE TABLE IF NOT EXISTS students (
    load_id UUID NOT NULL REFERENCES loads (load_id) ON DELETE CASCADE,
    cwid    TEXT NOT NULL,
    name    TEXT NOT NULL,
    major   TEXT NOT NULL,
    PRIMARY KEY (load_id, cwid)
);

CREATE TABLE IF NOT EXISTS completed_courses (
    load_id      UUID NOT NULL REFERENCES loads (load_id) ON DELETE CASCADE,
    student_cwid TEXT NOT NULL,
    course       TEXT NOT NULL,
    grade        TEXT NOT NULL,
    PRIMARY KEY (load_id, student_cwid, course)
);

CREATE TABLE IF NOT EXISTS instructors (
    load_id    UUID NOT NULL REFERENCES loads (load_id) ON DELETE CASCADE,
    cwid       TEXT NOT NULL,
    name       TEXT NOT NULL,
    department TEXT NOT NULL,
    PRIMARY KEY (load_id, cwid)
);

CREATE TABLE IF NOT EXISTS instructor_courses (
    load_id         UUID NOT NULL REFERENCES loads (load_id) ON DELETE CASCADE,
    instructor_cwid TEXT NOT NULL,
    course          TEXT NOT NULL,
    students        INTEGER NOT NULL CHECK (students > 0),
    PRIMARY KEY (load_id, instructor_cwid, course)
);
`
