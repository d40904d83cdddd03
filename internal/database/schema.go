package database

const schema = `
CREATE TABLE movie (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	year INTEGER,
	description TEXT,
	rating REAL NOT NULL DEFAULT 0,
	ranking INTEGER NOT NULL DEFAULT 0,
	review TEXT NOT NULL,
	img_url TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX idx_movie_ranking ON movie(ranking);
CREATE INDEX idx_movie_rating ON movie(rating);
CREATE INDEX idx_movie_title ON movie(title);
`

// migrations contains incremental schema changes
// Each migration is applied in order based on the current user_version
// migrations[0] is empty because version 0 uses the base schema
var migrations = []string{
	"",
}
