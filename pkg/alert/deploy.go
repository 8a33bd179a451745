package alert

import "github.com/go-go-golems/actionrunner/pkg/action"

type DeployDetails struct {
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
	Source Source `json:"source,omitempty"`
}

// ForDeploy derives a deploy alert from a (stage, status) pair.
// It has no side effects; identical inputs give identical alerts.
func ForDeploy(stage Stage, status action.Status, details *DeployDetails) DeployAlert {
	var d DeployDetails
	if details != nil {
		d = *details
	}
	if d.Source == "" {
		d.Source = SourceNetlify
	}

	a := DeployAlert{
		Type:         deployAlertType(status),
		Title:        deployTitle(stage),
		Description:  deployDescription(stage, status),
		Content:      d.Error,
		URL:          d.URL,
		Stage:        stage,
		BuildStatus:  action.StatusComplete,
		DeployStatus: status,
		Source:       d.Source,
	}
	switch stage {
	case StageBuilding:
		a.BuildStatus = status
		a.DeployStatus = action.StatusPending
	case StageDeploying, StageComplete:
	default:
		a.BuildStatus = action.StatusPending
	}
	return a
}

func deployAlertType(status action.Status) Type {
	switch status {
	case action.StatusFailed:
		return TypeError
	case action.StatusComplete:
		return TypeSuccess
	default:
		return TypeInfo
	}
}

func deployTitle(stage Stage) string {
	switch stage {
	case StageBuilding:
		return "Building Application"
	case StageDeploying:
		return "Deploying Application"
	default:
		return "Deployment Complete"
	}
}

func deployDescription(stage Stage, status action.Status) string {
	noun, verb, bare := "Deployment", "Deploying", "deploy"
	if stage == StageBuilding {
		noun, verb, bare = "Build", "Building", "build"
	}
	switch status {
	case action.StatusFailed:
		return noun + " failed"
	case action.StatusRunning:
		return verb + " your application..."
	case action.StatusComplete:
		return noun + " completed successfully"
	default:
		return "Preparing to " + bare + " your application"
	}
}

// The build handler emits these fixed alerts around its subprocess.

func BuildStarted() DeployAlert {
	return DeployAlert{
		Type:         TypeInfo,
		Title:        "Building Application",
		Description:  "Building your application...",
		Stage:        StageBuilding,
		BuildStatus:  action.StatusRunning,
		DeployStatus: action.StatusPending,
		Source:       SourceNetlify,
	}
}

func BuildFailed(output string) DeployAlert {
	if output == "" {
		output = "No build output available"
	}
	return DeployAlert{
		Type:         TypeError,
		Title:        "Build Failed",
		Description:  "Your application build failed",
		Content:      output,
		Stage:        StageBuilding,
		BuildStatus:  action.StatusFailed,
		DeployStatus: action.StatusPending,
		Source:       SourceNetlify,
	}
}

func BuildSucceeded() DeployAlert {
	return DeployAlert{
		Type:         TypeSuccess,
		Title:        "Build Completed",
		Description:  "Your application was built successfully",
		Stage:        StageDeploying,
		BuildStatus:  action.StatusComplete,
		DeployStatus: action.StatusRunning,
		Source:       SourceNetlify,
	}
}
