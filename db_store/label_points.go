package db_store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migrate_mysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v4"
)

const MIGRATIONS_TABLE = "label_points_schema_migrations"

type LabelPointsDBStore struct {
	logger *logrus.Logger
	db     *sqlx.DB
}

type LabelPoint struct {
	Name       string      `db:"name"`
	Lat        float64     `db:"lat"`
	Lon        float64     `db:"lon"`
	Area       null.Float  `db:"area"`
	Properties []byte      `db:"properties"`
	Source     null.String `db:"source"`
	Updated    int64       `db:"updated"`
}

func (lp *LabelPoint) GetProperties() (geojson.Properties, error) {
	if len(lp.Properties) == 0 {
		return geojson.Properties{}, nil
	}
	var props geojson.Properties
	if err := json.Unmarshal(lp.Properties, &props); err != nil {
		return nil, fmt.Errorf("label point '%s': bad properties: %w", lp.Name, err)
	}
	return props, nil
}

func (lp *LabelPoint) UpdatedTime() time.Time {
	return time.Unix(lp.Updated, 0)
}

const labelPointColumns = "name,lat,lon,area,properties,source,updated"

func (st *LabelPointsDBStore) UpsertLabelPoint(ctx context.Context, lp *LabelPoint) error {
	const query = "INSERT INTO label_points (" + labelPointColumns + ") VALUES (:name,:lat,:lon,:area,:properties,:source,:updated)" +
		" ON DUPLICATE KEY UPDATE lat=VALUES(lat),lon=VALUES(lon),area=VALUES(area),properties=VALUES(properties),source=VALUES(source),updated=VALUES(updated)"

	_, err := st.db.NamedExecContext(ctx, query, lp)
	return err
}

func (st *LabelPointsDBStore) GetLabelPoint(ctx context.Context, name string) (*LabelPoint, error) {
	const query = "SELECT " + labelPointColumns + " FROM label_points WHERE name=?"

	var lp LabelPoint

	if err := st.db.QueryRowxContext(ctx, query, name).StructScan(&lp); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &lp, nil
}

func (st *LabelPointsDBStore) GetAllLabelPoints(ctx context.Context) (lps []*LabelPoint, err error) {
	const query = "SELECT " + labelPointColumns + " FROM label_points ORDER BY name"

	rows, err := st.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { err = closeRows(rows, err) }()

	lps = make([]*LabelPoint, 0, 64)

	for rows.Next() {
		var lp LabelPoint
		if err = rows.StructScan(&lp); err != nil {
			return nil, err
		}
		lps = append(lps, &lp)
	}

	return lps, rows.Err()
}

// DeleteLabelPointsNotUpdatedSince removes points from 'source' that a newer
// import did not touch.
func (st *LabelPointsDBStore) DeleteLabelPointsNotUpdatedSince(ctx context.Context, source string, updated int64) (int64, error) {
	const query = "DELETE FROM label_points WHERE source=? AND updated < ?"

	res, err := st.db.ExecContext(ctx, query, source, updated)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (st *LabelPointsDBStore) migrate(config DBConfig) error {
	migratePath := config.MigrationsPath

	if migratePath == "" {
		st.logger.Infof("skipping labels_db migrations: no path given")
		return nil
	}

	st.logger.Infof("running labels_db migrations")

	migrateConfig := &migrate_mysql.Config{
		MigrationsTable: MIGRATIONS_TABLE,
		DatabaseName:    config.Db,
	}

	dbDriver, err := migrate_mysql.WithInstance(st.db.DB, migrateConfig)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(migratePath, "file://") {
		migratePath = "file://" + migratePath
	}

	m, err := migrate.NewWithDatabaseInstance(migratePath, config.Db, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to run labels DB migration: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

func (st *LabelPointsDBStore) Close() error {
	return st.db.Close()
}

func newLabelPointsDBStore(db *sqlx.DB, logger *logrus.Logger) *LabelPointsDBStore {
	return &LabelPointsDBStore{
		logger: logger,
		db:     db,
	}
}

func NewLabelPointsDBStore(config DBConfig, logger *logrus.Logger) (*LabelPointsDBStore, error) {
	db, err := sqlx.Connect("mysql", config.AsDSN())
	if err != nil {
		return nil, err
	}

	if config.MaxPool > 0 {
		db.SetMaxOpenConns(config.MaxPool)
	}

	st := newLabelPointsDBStore(db, logger)

	if err := st.migrate(config); err != nil {
		db.Close()
		return nil, err
	}

	return st, nil
}
