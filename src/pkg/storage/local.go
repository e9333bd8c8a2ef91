package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

// LocalBlobStore keeps blobs as files under root, one file per key.
type LocalBlobStore struct {
	root string
}

func NewLocalBlobStore(root string) *LocalBlobStore {
	return &LocalBlobStore{root: root}
}

func (s *LocalBlobStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(cleanKey(key)))
}

func (s *LocalBlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) (e *xerr.Error) {
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return xerr.NewError(err, "create blob directory", filepath.Dir(target))
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return xerr.NewError(err, "write blob", target)
	}
	tl.Log(tl.Debug, palette.CyanDim, "%s '%s' (%s bytes, %s)", "Stored blob", key, len(data), contentType)
	return nil
}

func (s *LocalBlobStore) Download(ctx context.Context, key string) (data []byte, e *xerr.Error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, xerr.NewError(err, "read blob", key)
	}
	return data, nil
}

/*
LocalRecordStore keeps every record as a JSON file:

	<root>/<table>/<record id>.json

where the record id is built from the key fields (see recordID).
*/
type LocalRecordStore struct {
	root string
}

func NewLocalRecordStore(root string) *LocalRecordStore {
	return &LocalRecordStore{root: root}
}

func (s *LocalRecordStore) path(table string, key Key) string {
	return filepath.Join(s.root, cleanKey(table), fileSafe(recordID(key))+".json")
}

func (s *LocalRecordStore) Put(ctx context.Context, table string, key Key, item any) (e *xerr.Error) {
	if e = key.validate(table); e != nil {
		return e
	}
	content, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return xerr.NewError(err, "marshal record", table)
	}

	target := s.path(table, key)
	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return xerr.NewError(err, "create table directory", filepath.Dir(target))
	}
	if err = os.WriteFile(target, content, 0o644); err != nil {
		return xerr.NewError(err, "write record", target)
	}
	tl.Log(tl.Debug, palette.CyanDim, "%s '%s' into '%s'", "Stored record", recordID(key), table)
	return nil
}

func (s *LocalRecordStore) Get(ctx context.Context, table string, key Key, out any) (found bool, e *xerr.Error) {
	if e = key.validate(table); e != nil {
		return false, e
	}
	content, err := os.ReadFile(s.path(table, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, xerr.NewError(err, "read record", fmt.Sprintf("%s/%s", table, recordID(key)))
	}
	if err = json.Unmarshal(content, out); err != nil {
		return false, xerr.NewError(err, "unmarshal record", fmt.Sprintf("%s/%s", table, recordID(key)))
	}
	return true, nil
}
