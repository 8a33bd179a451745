package runner

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
)

// FileHistory is the caller-owned record of prior contents of one file.
type FileHistory struct {
	OriginalContent string    `json:"originalContent"`
	LastModified    int64     `json:"lastModified"` // unix millis
	Changes         []Change  `json:"changes"`
	Versions        []Version `json:"versions"`
	ChangeSource    string    `json:"changeSource,omitempty"` // "user" | "auto-save" | "external"
}

// Change is one hunk of a line diff between the two latest versions.
type Change struct {
	Value   string `json:"value"`
	Count   int    `json:"count"`
	Added   bool   `json:"added,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

type Version struct {
	Timestamp int64  `json:"timestamp"`
	Content   string `json:"content"`
}

// Record appends content as a new version and recomputes Changes against the previous one.
func (h *FileHistory) Record(content string, at time.Time, source string) {
	prev := h.OriginalContent
	if n := len(h.Versions); n > 0 {
		prev = h.Versions[n-1].Content
	} else {
		h.OriginalContent = content
		prev = content
	}
	h.Changes = diffLines(prev, content)
	h.Versions = append(h.Versions, Version{Timestamp: at.UnixMilli(), Content: content})
	h.LastModified = at.UnixMilli()
	h.ChangeSource = source
}

func diffLines(a, b string) []Change {
	al := splitLines(a)
	bl := splitLines(b)
	m := difflib.NewMatcher(al, bl)

	var out []Change
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			out = append(out, Change{Value: strings.Join(al[op.I1:op.I2], ""), Count: op.I2 - op.I1})
		case 'd':
			out = append(out, Change{Value: strings.Join(al[op.I1:op.I2], ""), Count: op.I2 - op.I1, Removed: true})
		case 'i':
			out = append(out, Change{Value: strings.Join(bl[op.J1:op.J2], ""), Count: op.J2 - op.J1, Added: true})
		case 'r':
			out = append(out,
				Change{Value: strings.Join(al[op.I1:op.I2], ""), Count: op.I2 - op.I1, Removed: true},
				Change{Value: strings.Join(bl[op.J1:op.J2], ""), Count: op.J2 - op.J1, Added: true},
			)
		}
	}
	return out
}

// splitLines keeps line terminators so hunks join back into the original text.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// historyPath places the record for filePath under HistoryDir. Paths that
// resolve outside the workdir are rejected so a record never lands on a real file.
func (r *Runner) historyPath(filePath string) (string, error) {
	rel := r.relativePath(filePath)
	if rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", errors.Errorf("history path %q is outside the workdir", filePath)
	}
	return path.Join(r.opts.HistoryDir, rel), nil
}

// GetFileHistory reads the history record for filePath. A missing record is (nil, nil).
func (r *Runner) GetFileHistory(ctx context.Context, filePath string) (*FileHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := r.historyPath(filePath)
	if err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(r.opts.Sandbox.FS(), p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read file history")
	}
	var h FileHistory
	if err := json.Unmarshal(b, &h); err != nil {
		return nil, errors.Wrap(err, "parse file history")
	}
	return &h, nil
}

// SaveFileHistory writes history through the file-action path: write
// failures are logged, not returned. A path outside the workdir is an error.
func (r *Runner) SaveFileHistory(ctx context.Context, filePath string, h FileHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := r.historyPath(filePath)
	if err != nil {
		return err
	}
	b, err := json.Marshal(h)
	if err != nil {
		return errors.Wrap(err, "marshal file history")
	}
	r.writeFile(p, string(b))
	return nil
}
