package kit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	filemutex "github.com/alexflint/go-filemutex"
	"github.com/hokaccha/go-prettyjson"
	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"

	"github.com/cmake-tools/kitscan/pkg/log"
	"github.com/cmake-tools/kitscan/util/fileutil"
)

// lockTimeout bounds how long Save waits to acquire the sibling .lock file
// before giving up, so a crashed writer can't wedge future scans forever.
const lockTimeout = 10 * time.Second

// Load reads a kits document from path, tolerating // and /* */ comments
// and trailing commas (spec §4.G: "the on-disk format is JSON with comments
// and trailing commas tolerated, like a VS Code settings file"). A document
// that fails schema validation is the one distinguished terminal failure of
// §7: Load logs each violation and returns an empty list rather than trying
// to salvage the individually well-formed entries. Per-kit invariants that
// the schema can't express (Kit.Validate, checked once the document as a
// whole is schema-valid) are still dropped and logged individually.
func Load(path string) ([]*Kit, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read kits document %s", path)
	}

	stripped := jsonc.ToJSON(raw)

	violations, err := ValidateDocument(stripped)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		for _, v := range violations {
			log.Warnf("%v: kits document %s: %s: %s", ErrSchemaInvalid, fileutil.PrettifyPath(path), v.Field, v.Description)
		}
		return nil, nil
	}

	var kits []*Kit
	if err := json.Unmarshal(stripped, &kits); err != nil {
		return nil, errors.Wrapf(err, "failed to parse kits document %s", path)
	}

	valid := make([]*Kit, 0, len(kits))
	for _, k := range kits {
		if err := k.Validate(); err != nil {
			log.Warnf("kits document %s: dropping kit %q: %v", fileutil.PrettifyPath(path), k.Name, err)
			continue
		}
		valid = append(valid, k)
	}
	return valid, nil
}

// Save writes kits to path as indented JSON, serializing concurrent writers
// via a sibling ".lock" file (spec §4.G: "writers take an advisory file lock
// so a background scan and a user edit don't interleave"). The write goes
// through a temp file and rename so a reader never observes a half-written
// document.
func Save(path string, kits []*Kit) error {
	for _, k := range kits {
		if err := k.Validate(); err != nil {
			return errors.Wrapf(err, "refusing to save invalid kit %q", k.Name)
		}
	}

	lockPath := path + ".lock"
	mu, err := filemutex.New(lockPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create lock file %s", lockPath)
	}
	defer mu.Close()

	done := make(chan error, 1)
	go func() { done <- mu.Lock() }()
	select {
	case err := <-done:
		if err != nil {
			return errors.Wrapf(err, "failed to acquire lock %s", lockPath)
		}
	case <-time.After(lockTimeout):
		return errors.Errorf("timed out waiting for lock %s", lockPath)
	}
	defer mu.Unlock()

	data, err := json.MarshalIndent(kits, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal kits document")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".kits-*.json.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file in %s", dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write temp kits document %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close temp kits document %s", tmpPath)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "failed to replace kits document %s", path)
	}
	return nil
}

// DumpKit renders a single kit as pretty-printed JSON for debug logging
// (log.Debugf call sites use this to print a kit without flooding output at
// normal verbosity).
func DumpKit(k *Kit) string {
	b, err := prettyjson.Marshal(k)
	if err != nil {
		return errors.Wrap(err, "failed to pretty-print kit").Error()
	}
	return string(b)
}
