package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/raymyers/tacky-cc/pkg/compiler"
)

// lockName is the per-directory lock guarding artifact writes.
const lockName = ".tacky-cc.lock"

// artifactFilename returns the output path for a stage: input.c -> input.s
// for emission, input.<stage> otherwise.
func artifactFilename(filename string, stage compiler.Stage) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if stage == compiler.Emit {
		return base + ".s"
	}
	return base + "." + stage.String()
}

// writeArtifact writes content to path while holding the directory lock,
// so concurrent runs over the same sources never interleave writes.
func writeArtifact(path, content string) error {
	lock := flock.New(filepath.Join(filepath.Dir(path), lockName))
	if err := lock.Lock(); err != nil {
		return errors.Wrapf(err, "acquire lock for %s", path)
	}
	defer lock.Unlock()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
