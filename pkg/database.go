package display

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLStore serves the event display tables from a relational database. The
// schema mirrors the HDF5 layout: events, hits (keyed by hid), tracks (keyed
// by tid) and track_hits (keyed by idx, pointing at hits.hid).
type SQLStore struct {
	DB        *sqlx.DB
	Source    string
	events    []Event
	nHits     int64
	nTracks   int64
	hasTracks bool
}

type EventRow struct {
	Evid       int64 `db:"evid"`
	NHit       int64 `db:"nhit"`
	NTracks    int64 `db:"ntracks"`
	HitStart   int64 `db:"hit_start"`
	HitStop    int64 `db:"hit_stop"`
	TrackStart int64 `db:"track_start"`
	TrackStop  int64 `db:"track_stop"`
	TsStart    int64 `db:"ts_start"`
}

type HitRow struct {
	Hid int64   `db:"hid"`
	Px  float64 `db:"px"`
	Py  float64 `db:"py"`
	Ts  int64   `db:"ts"`
	Q   float64 `db:"q"`
}

type TrackRow struct {
	Tid      int64   `db:"tid"`
	StartX   float64 `db:"start_x"`
	StartY   float64 `db:"start_y"`
	StartZ   float64 `db:"start_z"`
	StartT   float64 `db:"start_t"`
	EndX     float64 `db:"end_x"`
	EndY     float64 `db:"end_y"`
	EndZ     float64 `db:"end_z"`
	EndT     float64 `db:"end_t"`
	HitStart int64   `db:"hit_start"`
	HitStop  int64   `db:"hit_stop"`
}

// Schema creates the event display tables; used by tests and by tools that
// fill a database for later display.
const Schema = `
CREATE TABLE events (
	evid BIGINT PRIMARY KEY,
	nhit BIGINT NOT NULL,
	ntracks BIGINT NOT NULL,
	hit_start BIGINT NOT NULL,
	hit_stop BIGINT NOT NULL,
	track_start BIGINT NOT NULL,
	track_stop BIGINT NOT NULL,
	ts_start BIGINT NOT NULL
);
CREATE TABLE hits (
	hid BIGINT PRIMARY KEY,
	px DOUBLE PRECISION NOT NULL,
	py DOUBLE PRECISION NOT NULL,
	ts BIGINT NOT NULL,
	q DOUBLE PRECISION NOT NULL
);
CREATE TABLE tracks (
	tid BIGINT PRIMARY KEY,
	start_x DOUBLE PRECISION NOT NULL,
	start_y DOUBLE PRECISION NOT NULL,
	start_z DOUBLE PRECISION NOT NULL,
	start_t DOUBLE PRECISION NOT NULL,
	end_x DOUBLE PRECISION NOT NULL,
	end_y DOUBLE PRECISION NOT NULL,
	end_z DOUBLE PRECISION NOT NULL,
	end_t DOUBLE PRECISION NOT NULL,
	hit_start BIGINT NOT NULL,
	hit_stop BIGINT NOT NULL
);
CREATE TABLE track_hits (
	idx BIGINT PRIMARY KEY,
	hid BIGINT NOT NULL
);
`

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = host
	if !strings.Contains(host, ":") {
		cfg.Addr = host + ":3306"
	}
	cfg.DBName = dbname
	cfg.ParseTime = true
	return sqlx.Connect("mysql", cfg.FormatDSN())
}

// sqlSource recognises database sources: mysql://, postgres:// and sqlite://
// URLs, and SQLite files by extension.
func sqlSource(source string) (driver string, dsn string, ok bool) {
	switch {
	case strings.HasPrefix(source, "mysql://"):
		return "mysql", source, true
	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		return "postgres", source, true
	case strings.HasPrefix(source, "sqlite://"):
		return "sqlite", strings.TrimPrefix(source, "sqlite://"), true
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite", source, true
	}
	return "", "", false
}

// redacted hides the password of URL sources; it ends up in titles and logs.
func redacted(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}

func connect(driver, dsn string) (*sqlx.DB, error) {
	if driver != "mysql" {
		return sqlx.Connect(driver, dsn)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	// Missing URL parts fall back to the configured credentials
	user, host, dbname := configuration.User, configuration.Host, configuration.DBName
	pass := configuration.Passwd
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if u.Host != "" {
		host = u.Host
	}
	if name := strings.TrimPrefix(u.Path, "/"); name != "" {
		dbname = name
	}
	return ConnectToDatabase(user, pass, host, dbname)
}

func OpenSQLStore(driver, dsn string) (*SQLStore, error) {
	db, err := connect(driver, dsn)
	if err != nil {
		return nil, &ErrOpenFile{Filename: dsn, Err: err}
	}
	s := &SQLStore{DB: db, Source: redacted(dsn)}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an already connected database.
func NewSQLStore(db *sqlx.DB, source string) (*SQLStore, error) {
	s := &SQLStore{DB: db, Source: source}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) query(query string) string {
	query = s.DB.Rebind(query)
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}
	return query
}

func (s *SQLStore) load() error {
	rows, err := s.DB.Queryx(s.query("SELECT evid, nhit, ntracks, hit_start, hit_stop, track_start, track_stop, ts_start FROM events ORDER BY evid"))
	if err != nil {
		return &DataAccessError{Table: EventsTable, Err: err}
	}
	defer rows.Close()

	var eventRows []EventRow
	for rows.Next() {
		result := EventRow{}
		if err := rows.StructScan(&result); err != nil {
			return &DataAccessError{Table: EventsTable, Err: fmt.Errorf("error scanning DB row: %w", err)}
		}
		eventRows = append(eventRows, result)
	}
	if err := rows.Err(); err != nil {
		return &DataAccessError{Table: EventsTable, Err: err}
	}

	if err := s.DB.Get(&s.nHits, s.query("SELECT COUNT(*) FROM hits")); err != nil {
		return &DataAccessError{Table: HitsTable, Err: err}
	}

	// The tracks table is optional
	if err := s.DB.Get(&s.nTracks, s.query("SELECT COUNT(*) FROM tracks")); err == nil {
		s.hasTracks = true
	} else if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("No tracks table: %v", err), "database")
	}

	s.events = make([]Event, len(eventRows))
	for i, row := range eventRows {
		event := Event{
			ID:         row.Evid,
			NHit:       row.NHit,
			NTracks:    row.NTracks,
			HitStart:   row.HitStart,
			HitStop:    row.HitStop,
			TrackStart: row.TrackStart,
			TrackStop:  row.TrackStop,
			TsStart:    row.TsStart,
		}
		if err := event.validate(s.nHits); err != nil {
			return err
		}
		s.events[i] = event
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Opened %s: %d events, %d hits, tracks=%t", s.Source, len(s.events), s.nHits, s.hasTracks)
		logger.Info(message, "database")
	}
	return nil
}

func (s *SQLStore) Name() string { return s.Source }

func (s *SQLStore) Events() []Event { return s.events }

func (s *SQLStore) HasTracks() bool { return s.hasTracks }

func (s *SQLStore) ReadHits(start, stop int64) ([]Hit, error) {
	if start < 0 || stop < start || stop > s.nHits {
		return nil, &DataAccessError{Table: HitsTable, Err: fmt.Errorf("range [%d:%d] outside %d rows", start, stop, s.nHits)}
	}
	var rows []HitRow
	err := s.DB.Select(&rows, s.query("SELECT hid, px, py, ts, q FROM hits WHERE hid >= ? AND hid < ? ORDER BY hid"), start, stop)
	if err != nil {
		return nil, &DataAccessError{Table: HitsTable, Err: err}
	}
	if int64(len(rows)) != stop-start {
		return nil, &DataAccessError{Table: HitsTable, Field: "hid",
			Err: fmt.Errorf("expected %d rows in [%d:%d], got %d", stop-start, start, stop, len(rows))}
	}
	hits := make([]Hit, len(rows))
	for i, row := range rows {
		hits[i] = Hit{X: row.Px, Y: row.Py, Timestamp: row.Ts, Charge: row.Q}
	}
	return hits, nil
}

func (s *SQLStore) ReadTracks(start, stop int64) ([]Track, error) {
	if !s.hasTracks {
		return nil, &DataAccessError{Table: TracksTable, Err: fmt.Errorf("table not found")}
	}
	if start < 0 || stop < start || stop > s.nTracks {
		return nil, &DataAccessError{Table: TracksTable, Err: fmt.Errorf("range [%d:%d] outside %d rows", start, stop, s.nTracks)}
	}
	var rows []TrackRow
	err := s.DB.Select(&rows, s.query(`SELECT tid, start_x, start_y, start_z, start_t, end_x, end_y, end_z, end_t, hit_start, hit_stop
		FROM tracks WHERE tid >= ? AND tid < ? ORDER BY tid`), start, stop)
	if err != nil {
		return nil, &DataAccessError{Table: TracksTable, Err: err}
	}
	tracks := make([]Track, len(rows))
	for i, row := range rows {
		var members []int64
		if row.HitStop > row.HitStart {
			err := s.DB.Select(&members, s.query("SELECT hid FROM track_hits WHERE idx >= ? AND idx < ? ORDER BY idx"), row.HitStart, row.HitStop)
			if err != nil {
				return nil, &DataAccessError{Table: TrackHitsTable, Err: err}
			}
		}
		tracks[i] = Track{
			Start:      Point3D{X: row.StartX, Y: row.StartY, T: row.StartT},
			End:        Point3D{X: row.EndX, Y: row.EndY, T: row.EndT},
			MemberHits: members,
		}
	}
	return tracks, nil
}

func (s *SQLStore) HitsByIndex(index []int64) ([]Hit, error) {
	if len(index) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT hid, px, py, ts, q FROM hits WHERE hid IN (?)", index)
	if err != nil {
		return nil, &DataAccessError{Table: HitsTable, Err: err}
	}
	var rows []HitRow
	if err := s.DB.Select(&rows, s.query(query), args...); err != nil {
		return nil, &DataAccessError{Table: HitsTable, Err: err}
	}
	byID := make(map[int64]HitRow, len(rows))
	for _, row := range rows {
		byID[row.Hid] = row
	}
	hits := make([]Hit, len(index))
	for i, idx := range index {
		row, ok := byID[idx]
		if !ok {
			return nil, &DataAccessError{Table: HitsTable, Field: "hid", Err: fmt.Errorf("hit %d not found", idx)}
		}
		hits[i] = Hit{X: row.Px, Y: row.Py, Timestamp: row.Ts, Charge: row.Q}
	}
	return hits, nil
}

func (s *SQLStore) Close() error {
	return s.DB.Close()
}
