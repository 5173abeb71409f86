// Package postgresql owns the bun database handle shared by the
// repositories, plus the claim/validation helpers they all lean on.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"school-attendance/backend/foundation/web"
	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/pkg/config"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

type Database struct {
	*bun.DB
}

func NewConnection(cfg *config.Config) *Database {
	connector := pgdriver.NewConnector(
		pgdriver.WithAddr(fmt.Sprintf("%s:%s", cfg.DBHost, cfg.DBPort)),
		pgdriver.WithUser(cfg.DBUsername),
		pgdriver.WithPassword(cfg.DBPassword),
		pgdriver.WithDatabase(cfg.DBName),
		pgdriver.WithInsecure(cfg.DisableTLS),
	)

	sqldb := sql.OpenDB(connector)
	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(false)))

	return &Database{db}
}

// CheckClaims returns the auth claims stored in the context. When roles are
// given the caller must hold one of them.
func (d Database) CheckClaims(ctx context.Context, roles ...string) (auth.Claims, error) {
	claims, err := auth.GetClaims(ctx)
	if err != nil {
		return auth.Claims{}, web.NewRequestError(err, http.StatusUnauthorized)
	}

	if len(roles) > 0 && !claims.Authorized(roles...) {
		return auth.Claims{}, web.NewRequestError(errors.New("attempted action is not allowed"), http.StatusForbidden)
	}

	return claims, nil
}

// ValidateStruct verifies the named fields of a request struct were provided
// (non-nil pointers, non-zero values).
func (d Database) ValidateStruct(s interface{}, requiredFields ...string) error {
	rv := reflect.ValueOf(s)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	for _, name := range requiredFields {
		field := rv.FieldByName(name)
		if !field.IsValid() {
			continue
		}
		if field.Kind() == reflect.Ptr && field.IsNil() {
			return web.NewRequestError(errors.Errorf("field %q is required", name), http.StatusBadRequest)
		}
		if field.Kind() != reflect.Ptr && field.IsZero() {
			return web.NewRequestError(errors.Errorf("field %q is required", name), http.StatusBadRequest)
		}
	}

	return nil
}

// DeleteRow soft deletes a row, stamping who removed it.
func (d Database) DeleteRow(ctx context.Context, table string, id int) error {
	claims, err := d.CheckClaims(ctx)
	if err != nil {
		return err
	}

	q := d.NewUpdate().
		Table(table).
		Where("deleted_at IS NULL AND id = ?", id).
		Set("deleted_at = ?", time.Now()).
		Set("deleted_by = ?", claims.UserId)

	result, err := q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrapf(err, "deleting from %s", table), http.StatusBadRequest)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "checking delete result"), http.StatusInternalServerError)
	}
	if rows == 0 {
		return web.NewRequestError(errors.Errorf("no row with id %d in %s", id, table), http.StatusNotFound)
	}

	return nil
}
