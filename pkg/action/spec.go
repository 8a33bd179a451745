package action

import (
	"strings"

	"github.com/pkg/errors"
)

// Spec is the flat wire form of an Action, tagged for JSON and YAML.
type Spec struct {
	Type         Type              `json:"type" yaml:"type"`
	Content      string            `json:"content,omitempty" yaml:"content,omitempty"`
	FilePath     string            `json:"filePath,omitempty" yaml:"filePath,omitempty"`
	ChangeSource string            `json:"changeSource,omitempty" yaml:"changeSource,omitempty"`
	Operation    SupabaseOperation `json:"operation,omitempty" yaml:"operation,omitempty"`
	ProjectID    string            `json:"projectId,omitempty" yaml:"projectId,omitempty"`
}

func (s Spec) Action() (Action, error) {
	switch Type(strings.ToLower(string(s.Type))) {
	case TypeShell:
		return ShellAction{Content: s.Content}, nil
	case TypeFile:
		if s.FilePath == "" {
			return nil, errors.New("file action missing filePath")
		}
		return FileAction{FilePath: s.FilePath, Content: s.Content, ChangeSource: s.ChangeSource}, nil
	case TypeStart:
		return StartAction{Content: s.Content}, nil
	case TypeBuild:
		return BuildAction{Content: s.Content}, nil
	case TypeSupabase:
		return SupabaseAction{
			Operation: s.Operation,
			FilePath:  s.FilePath,
			Content:   s.Content,
			ProjectID: s.ProjectID,
		}, nil
	case "":
		return nil, errors.New("action missing type")
	default:
		return nil, errors.Errorf("unknown action type %q", s.Type)
	}
}

func SpecOf(a Action) Spec {
	switch v := a.(type) {
	case ShellAction:
		return Spec{Type: TypeShell, Content: v.Content}
	case FileAction:
		return Spec{Type: TypeFile, Content: v.Content, FilePath: v.FilePath, ChangeSource: v.ChangeSource}
	case StartAction:
		return Spec{Type: TypeStart, Content: v.Content}
	case BuildAction:
		return Spec{Type: TypeBuild, Content: v.Content}
	case SupabaseAction:
		return Spec{Type: TypeSupabase, Operation: v.Operation, FilePath: v.FilePath, Content: v.Content, ProjectID: v.ProjectID}
	default:
		return Spec{}
	}
}
