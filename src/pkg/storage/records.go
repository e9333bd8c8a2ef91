package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tuumbleweed/xerr"
)

// Key holds the key attributes of a record, e.g. {"image_id": "..."}.
type Key map[string]string

/*
RecordStore persists JSON-shaped records per table.

Put replaces any record with the same key. Get reports found=false without an
error when nothing is stored under the key.
*/
type RecordStore interface {
	Put(ctx context.Context, table string, key Key, item any) *xerr.Error
	Get(ctx context.Context, table string, key Key, out any) (bool, *xerr.Error)
}

func (k Key) validate(table string) (e *xerr.Error) {
	if len(k) == 0 {
		return xerr.NewError(fmt.Errorf("record key is empty"), "validate record key", table)
	}
	for field, value := range k {
		if field == "" || value == "" {
			err := fmt.Errorf("key field '%s' has value '%s'", field, value)
			return xerr.NewError(err, "validate record key", table)
		}
	}
	return nil
}

// recordID joins key fields in name order: "filename=a.pdf|shop_name=billa".
func recordID(key Key) string {
	fields := make([]string, 0, len(key))
	for field := range key {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+"="+key[field])
	}
	return strings.Join(parts, "|")
}

func fileSafe(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, id)
}
