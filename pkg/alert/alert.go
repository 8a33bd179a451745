package alert

import "github.com/go-go-golems/actionrunner/pkg/action"

type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

type Stage string

const (
	StageBuilding  Stage = "building"
	StageDeploying Stage = "deploying"
	StageComplete  Stage = "complete"
)

type Source string

const (
	SourceNetlify Source = "netlify"
	SourceVercel  Source = "vercel"
	SourceGitHub  Source = "github"
)

type ActionAlert struct {
	Type        Type   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Source      string `json:"source,omitempty"` // "terminal" | "preview"
}

type SupabaseAlert struct {
	Type        Type   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Source      string `json:"source"`
}

type DeployAlert struct {
	Type         Type          `json:"type"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Content      string        `json:"content,omitempty"`
	URL          string        `json:"url,omitempty"`
	Stage        Stage         `json:"stage"`
	BuildStatus  action.Status `json:"buildStatus"`
	DeployStatus action.Status `json:"deployStatus"`
	Source       Source        `json:"source"`
}

// Handlers holds the three optional notification channels. A nil field drops the alert.
type Handlers struct {
	OnAlert         func(ActionAlert)
	OnSupabaseAlert func(SupabaseAlert)
	OnDeployAlert   func(DeployAlert)
}

func (h Handlers) Alert(a ActionAlert) {
	if h.OnAlert != nil {
		h.OnAlert(a)
	}
}

func (h Handlers) Supabase(a SupabaseAlert) {
	if h.OnSupabaseAlert != nil {
		h.OnSupabaseAlert(a)
	}
}

func (h Handlers) Deploy(a DeployAlert) {
	if h.OnDeployAlert != nil {
		h.OnDeployAlert(a)
	}
}
