package alert

import (
	"testing"

	"github.com/go-go-golems/actionrunner/pkg/action"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestForDeploy_Table(t *testing.T) {
	type want struct {
		typ          Type
		title        string
		description  string
		buildStatus  action.Status
		deployStatus action.Status
	}
	cases := map[Stage]map[action.Status]want{
		StageBuilding: {
			action.StatusPending:  {TypeInfo, "Building Application", "Preparing to build your application", action.StatusPending, action.StatusPending},
			action.StatusRunning:  {TypeInfo, "Building Application", "Building your application...", action.StatusRunning, action.StatusPending},
			action.StatusComplete: {TypeSuccess, "Building Application", "Build completed successfully", action.StatusComplete, action.StatusPending},
			action.StatusAborted:  {TypeInfo, "Building Application", "Preparing to build your application", action.StatusAborted, action.StatusPending},
			action.StatusFailed:   {TypeError, "Building Application", "Build failed", action.StatusFailed, action.StatusPending},
		},
		StageDeploying: {
			action.StatusPending:  {TypeInfo, "Deploying Application", "Preparing to deploy your application", action.StatusComplete, action.StatusPending},
			action.StatusRunning:  {TypeInfo, "Deploying Application", "Deploying your application...", action.StatusComplete, action.StatusRunning},
			action.StatusComplete: {TypeSuccess, "Deploying Application", "Deployment completed successfully", action.StatusComplete, action.StatusComplete},
			action.StatusAborted:  {TypeInfo, "Deploying Application", "Preparing to deploy your application", action.StatusComplete, action.StatusAborted},
			action.StatusFailed:   {TypeError, "Deploying Application", "Deployment failed", action.StatusComplete, action.StatusFailed},
		},
		StageComplete: {
			action.StatusPending:  {TypeInfo, "Deployment Complete", "Preparing to deploy your application", action.StatusComplete, action.StatusPending},
			action.StatusRunning:  {TypeInfo, "Deployment Complete", "Deploying your application...", action.StatusComplete, action.StatusRunning},
			action.StatusComplete: {TypeSuccess, "Deployment Complete", "Deployment completed successfully", action.StatusComplete, action.StatusComplete},
			action.StatusAborted:  {TypeInfo, "Deployment Complete", "Preparing to deploy your application", action.StatusComplete, action.StatusAborted},
			action.StatusFailed:   {TypeError, "Deployment Complete", "Deployment failed", action.StatusComplete, action.StatusFailed},
		},
	}

	for stage, byStatus := range cases {
		for status, w := range byStatus {
			got := ForDeploy(stage, status, nil)
			expected := DeployAlert{
				Type:         w.typ,
				Title:        w.title,
				Description:  w.description,
				Stage:        stage,
				BuildStatus:  w.buildStatus,
				DeployStatus: w.deployStatus,
				Source:       SourceNetlify,
			}
			if diff := cmp.Diff(expected, got); diff != "" {
				t.Errorf("ForDeploy(%s, %s) mismatch (-want +got):\n%s", stage, status, diff)
			}
			require.Equal(t, got, ForDeploy(stage, status, nil))
		}
	}
}

func TestForDeploy_Details(t *testing.T) {
	got := ForDeploy(StageComplete, action.StatusComplete, &DeployDetails{URL: "https://x.vercel.app", Source: SourceVercel})
	require.Equal(t, "https://x.vercel.app", got.URL)
	require.Equal(t, SourceVercel, got.Source)
	require.Equal(t, "", got.Content)

	got = ForDeploy(StageDeploying, action.StatusFailed, &DeployDetails{Error: "quota exceeded"})
	require.Equal(t, "quota exceeded", got.Content)
	require.Equal(t, SourceNetlify, got.Source)
}

func TestBuildAlerts(t *testing.T) {
	require.Equal(t, action.StatusRunning, BuildStarted().BuildStatus)
	require.Equal(t, ForDeploy(StageBuilding, action.StatusRunning, nil), BuildStarted())

	f := BuildFailed("")
	require.Equal(t, action.StatusFailed, f.BuildStatus)
	require.Equal(t, "No build output available", f.Content)

	s := BuildSucceeded()
	require.Equal(t, StageDeploying, s.Stage)
	require.Equal(t, action.StatusRunning, s.DeployStatus)
}

func TestHandlers_NilSafe(t *testing.T) {
	var h Handlers
	h.Alert(ActionAlert{})
	h.Supabase(SupabaseAlert{})
	h.Deploy(DeployAlert{})

	var got []string
	h = Handlers{OnAlert: func(a ActionAlert) { got = append(got, a.Title) }}
	h.Alert(ActionAlert{Title: "x"})
	require.Equal(t, []string{"x"}, got)
}
