package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/Additional-Code/timeclock/internal/entity"
)

type table struct {
	model       any
	foreignKeys []string
}

// tables lists the mapped entities in dependency order.
var tables = []table{
	{model: (*entity.Customer)(nil)},
	{model: (*entity.Developer)(nil)},
	{
		model: (*entity.Job)(nil),
		foreignKeys: []string{
			`("customer_id") REFERENCES "customers" ("customer_id")`,
			`("developer_id") REFERENCES "developers" ("developer_id")`,
		},
	},
	{
		model: (*entity.Pay)(nil),
		foreignKeys: []string{
			`("order_number") REFERENCES "jobs" ("order_number")`,
		},
	},
	{
		model: (*entity.WorkingHours)(nil),
		foreignKeys: []string{
			`("developer_id") REFERENCES "developers" ("developer_id")`,
		},
	},
}

// Models returns the mapped entity models in dependency order.
func Models() []any {
	models := make([]any, 0, len(tables))
	for _, t := range tables {
		models = append(models, t.model)
	}
	return models
}

// CreateSchema derives the tables from the entity definitions, skipping
// tables that already exist.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	return CreateTables(ctx, db, nil)
}

// DropSchema removes the tables in reverse dependency order.
func DropSchema(ctx context.Context, db bun.IDB) error {
	return DropTables(ctx, db, nil)
}

// CreateTables is CreateSchema running its statements on conn, which may
// be a raw *sql.Tx. A nil conn uses db.
func CreateTables(ctx context.Context, db bun.IDB, conn bun.IConn) error {
	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		if conn != nil {
			q = q.Conn(conn)
		}
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", t.model, err)
		}
	}
	return nil
}

// DropTables is DropSchema running its statements on conn.
func DropTables(ctx context.Context, db bun.IDB, conn bun.IConn) error {
	for i := len(tables) - 1; i >= 0; i-- {
		q := db.NewDropTable().Model(tables[i].model).IfExists()
		if conn != nil {
			q = q.Conn(conn)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("drop table %T: %w", tables[i].model, err)
		}
	}
	return nil
}
