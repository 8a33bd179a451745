package runner

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// relativePath maps an action path onto the sandbox FS, which is rooted at the workdir.
func (r *Runner) relativePath(p string) string {
	p = filepath.ToSlash(p)
	if path.IsAbs(p) {
		rel, err := filepath.Rel(r.opts.Sandbox.Workdir(), filepath.FromSlash(p))
		if err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return path.Clean(p)
}

// writeFile creates parent directories and writes content. Failures are
// logged and never change the action's status.
func (r *Runner) writeFile(filePath string, content string) {
	fs := r.opts.Sandbox.FS()
	rel := r.relativePath(filePath)

	folder := strings.TrimRight(path.Dir(rel), "/")
	if folder != "." && folder != "" {
		if err := fs.MkdirAll(folder, 0o755); err != nil {
			log.Error().Err(err).Str("folder", folder).Msg("failed to create folder")
		} else {
			log.Debug().Str("folder", folder).Msg("created folder")
		}
	}

	if err := afero.WriteFile(fs, rel, []byte(content), 0o644); err != nil {
		log.Error().Err(err).Str("path", rel).Msg("failed to write file")
		return
	}
	log.Debug().Str("path", rel).Msg("file written")
}
