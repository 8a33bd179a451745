package action

type Type string

const (
	TypeShell    Type = "shell"
	TypeFile     Type = "file"
	TypeStart    Type = "start"
	TypeBuild    Type = "build"
	TypeSupabase Type = "supabase"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusAborted  Status = "aborted"
	StatusFailed   Status = "failed"
)

// Terminal reports whether the status is one the runner never leaves on its own.
func (s Status) Terminal() bool {
	switch s {
	case StatusComplete, StatusAborted, StatusFailed:
		return true
	default:
		return false
	}
}

type SupabaseOperation string

const (
	SupabaseMigration SupabaseOperation = "migration"
	SupabaseQuery     SupabaseOperation = "query"
)

// Action is one unit of work emitted by the upstream producer.
// The set of variants is closed: only types in this package implement it.
type Action interface {
	Type() Type
	isAction()
}

type ShellAction struct {
	Content string
}

type FileAction struct {
	FilePath     string
	Content      string
	ChangeSource string
}

type StartAction struct {
	Content string
}

type BuildAction struct {
	Content string
}

type SupabaseAction struct {
	Operation SupabaseOperation
	FilePath  string
	Content   string
	ProjectID string
}

func (ShellAction) Type() Type    { return TypeShell }
func (FileAction) Type() Type     { return TypeFile }
func (StartAction) Type() Type    { return TypeStart }
func (BuildAction) Type() Type    { return TypeBuild }
func (SupabaseAction) Type() Type { return TypeSupabase }

func (ShellAction) isAction()    {}
func (FileAction) isAction()     {}
func (StartAction) isAction()    {}
func (BuildAction) isAction()    {}
func (SupabaseAction) isAction() {}

// State is a read-only copy of what the runner knows about one action.
type State struct {
	Action   Action
	Status   Status
	Executed bool
	// Error is set only when Status is StatusFailed.
	Error string
}
