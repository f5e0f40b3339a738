package realtime

import (
	"context"
	"encoding/json"
	"log"
	"reflect"
	"time"

	"gorm.io/gorm"
)

// Publisher is the write half of Broker.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// RegisterCallbacks makes db publish every committed create and update on
// tables. Publishing errors are logged and never fail the write. Writes made
// inside an outer transaction are only published when it was opened with
// Transaction; otherwise they are skipped.
func RegisterCallbacks(db *gorm.DB, pub Publisher, tables ...string) error {
	watched := make(map[string]bool, len(tables))
	for _, t := range tables {
		watched[t] = true
	}

	err := db.Callback().Create().
		After("gorm:commit_or_rollback_transaction").
		Register("realtime:after_create", emitter(pub, OpInsert, watched))
	if err != nil {
		return err
	}
	return db.Callback().Update().
		After("gorm:commit_or_rollback_transaction").
		Register("realtime:after_update", emitter(pub, OpUpdate, watched))
}

func emitter(pub Publisher, op Op, watched map[string]bool) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.Statement.Schema == nil || !watched[db.Statement.Table] {
			return
		}
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		rows := rowsOf(db.Statement.ReflectValue)
		table := db.Statement.Table
		publish := func() {
			for _, row := range rows {
				change := Change{Table: table, Op: op, Row: row, At: time.Now()}
				if err := pub.Publish(ctx, Channel(table), change); err != nil {
					log.Printf("realtime: failed to publish %s on %s: %v", op, table, err)
				}
			}
		}

		if !inTransaction(db) {
			publish()
			return
		}
		if d := deferredFrom(ctx); d != nil {
			d.add(publish)
			return
		}
		log.Printf("realtime: %s on %s inside an untracked transaction not published", op, table)
	}
}

func rowsOf(v reflect.Value) []map[string]interface{} {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		if row := toRow(v.Interface()); row != nil {
			return []map[string]interface{}{row}
		}
	case reflect.Slice, reflect.Array:
		rows := make([]map[string]interface{}, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			rows = append(rows, rowsOf(v.Index(i))...)
		}
		return rows
	}
	return nil
}

func toRow(model interface{}) map[string]interface{} {
	data, err := json.Marshal(model)
	if err != nil {
		log.Printf("realtime: failed to encode %T: %v", model, err)
		return nil
	}
	var row map[string]interface{}
	if err := json.Unmarshal(data, &row); err != nil {
		return nil
	}
	return row
}
