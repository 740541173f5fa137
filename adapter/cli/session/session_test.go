package session

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/opportunity/adapter/cli"
	internalApp "github.com/felixgeelhaar/opportunity/internal/app"
	"github.com/felixgeelhaar/opportunity/internal/booking/application/queries"
	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/felixgeelhaar/opportunity/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestApp creates a CLI app over a SQLite store in a temp dir.
func setupTestApp(t *testing.T) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:      "test",
		StoreDriver: "sqlite",
		SQLitePath:  filepath.Join(t.TempDir(), "test.db"),
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := internalApp.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	app := cli.NewApp(
		container.StartSessionHandler,
		container.Dispatcher,
		container.GetSessionHandler,
		container.ListSessionsHandler,
		container.GetStageHandler,
		container.GetCommitmentRecordHandler,
	)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })

	resetFlags()
	t.Cleanup(resetFlags)
	return app
}

func resetFlags() {
	sessionFlag = ""
	jobNumber = ""
	fromDate = ""
	days = 0
	party = ""
	unavailable = false
	decline = false
	icsPath = ""
	cli.SetActingRole(domain.RoleProvider)
}

func run(t *testing.T, cmd *cobra.Command, role domain.Role, args ...string) (string, error) {
	t.Helper()
	cli.SetActingRole(role)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestSessionCommands_FullBooking(t *testing.T) {
	app := setupTestApp(t)

	fromDate = "2024-05-06"
	days = 2
	jobNumber = "JOB-2024-117"
	out, err := run(t, startCmd, domain.RoleProvider)
	require.NoError(t, err)
	assert.Contains(t, out, "Session started!")

	_, err = run(t, submitCmd, domain.RoleReceiver, "2024-05-06-AM", "2024-05-07-PM")
	require.NoError(t, err)

	out, err = run(t, availabilityCmd, domain.RoleFacilitator, "2024-05-07-PM")
	require.NoError(t, err)
	assert.Contains(t, out, "Accepted")

	_, err = run(t, submitCmd, domain.RoleFacilitator, "2024-05-07-PM")
	require.NoError(t, err)

	out, err = run(t, stageCmd, domain.RoleProvider)
	require.NoError(t, err)
	assert.Contains(t, out, "Stage: selection")
	assert.Contains(t, out, "Mutual slots: 2024-05-07-PM")

	out, err = run(t, selectCmd, domain.RoleProvider, "2024-05-06-AM")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, out, "Rejected")

	_, err = run(t, selectCmd, domain.RoleProvider, "2024-05-07-PM")
	require.NoError(t, err)

	_, err = run(t, respondCmd, domain.RoleReceiver)
	require.NoError(t, err)
	_, err = run(t, respondCmd, domain.RoleFacilitator)
	require.NoError(t, err)

	icsPath = filepath.Join(t.TempDir(), "appointment.ics")
	out, err = run(t, recordCmd, domain.RoleProvider)
	require.NoError(t, err)
	assert.Contains(t, out, "JOB-2024-117")
	assert.Contains(t, out, "Status: confirmed")

	ics, err := os.ReadFile(icsPath)
	require.NoError(t, err)
	assert.Contains(t, string(ics), "BEGIN:VCALENDAR")

	sessions, err := app.ListSessionsHandler.Handle(context.Background(), queries.ListSessionsQuery{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, string(domain.StageRecord), sessions[0].Stage)
}

func TestSessionCommands_RespondOnlyOnce(t *testing.T) {
	setupTestApp(t)

	fromDate = "2024-05-06"
	days = 1
	_, err := run(t, startCmd, domain.RoleProvider)
	require.NoError(t, err)

	party = "receiver"
	_, err = run(t, submitCmd, domain.RoleProvider, "2024-05-06-PM")
	require.NoError(t, err)
	party = "facilitator"
	_, err = run(t, submitCmd, domain.RoleProvider, "2024-05-06-PM")
	require.NoError(t, err)
	party = ""

	_, err = run(t, selectCmd, domain.RoleProvider, "2024-05-06-PM")
	require.NoError(t, err)

	decline = true
	_, err = run(t, respondCmd, domain.RoleReceiver)
	require.NoError(t, err)

	decline = false
	out, err := run(t, respondCmd, domain.RoleReceiver)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, out, string(domain.ReasonAlreadyResponded))

	out, err = run(t, recordCmd, domain.RoleProvider)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: declined")
}

func TestSessionCommands_NoSessions(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, showCmd, domain.RoleProvider)
	assert.ErrorIs(t, err, ErrNoSessions)
}

func TestSessionCommands_RecordBeforeSelection(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, startCmd, domain.RoleProvider)
	require.NoError(t, err)

	out, err := run(t, recordCmd, domain.RoleProvider)
	require.NoError(t, err)
	assert.Contains(t, out, "No opportunity selected yet.")
}

func TestSessionCommands_ShowAndList(t *testing.T) {
	setupTestApp(t)

	fromDate = "2024-05-06"
	days = 1
	_, err := run(t, startCmd, domain.RoleProvider)
	require.NoError(t, err)

	out, err := run(t, showCmd, domain.RoleProvider)
	require.NoError(t, err)
	assert.Contains(t, out, "2024-05-06-AM")
	assert.Contains(t, out, "2024-05-06-PM")
	assert.Contains(t, out, "Stage:   receiver_availability")

	out, err = run(t, listCmd, domain.RoleProvider)
	require.NoError(t, err)
	assert.Contains(t, out, "Sessions (1)")
	assert.Contains(t, out, domain.DefaultJobNumber)
}

func TestSessionCommands_InvalidSessionFlag(t *testing.T) {
	setupTestApp(t)

	sessionFlag = "not-a-uuid"
	_, err := run(t, showCmd, domain.RoleProvider)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session ID")
}

func TestPartyFor(t *testing.T) {
	t.Cleanup(resetFlags)

	tests := []struct {
		name    string
		flag    string
		role    domain.Role
		want    domain.Role
		wantErr bool
	}{
		{name: "receiver defaults to itself", role: domain.RoleReceiver, want: domain.RoleReceiver},
		{name: "facilitator defaults to itself", role: domain.RoleFacilitator, want: domain.RoleFacilitator},
		{name: "provider needs --for", role: domain.RoleProvider, wantErr: true},
		{name: "provider for receiver", flag: "receiver", role: domain.RoleProvider, want: domain.RoleReceiver},
		{name: "abbreviation", flag: "sf", role: domain.RoleProvider, want: domain.RoleFacilitator},
		{name: "provider is not a party", flag: "provider", role: domain.RoleReceiver, wantErr: true},
		{name: "unknown", flag: "nobody", role: domain.RoleReceiver, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			party = tt.flag
			got, err := partyFor(tt.role)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireApp_NotInitialized(t *testing.T) {
	cli.SetApp(nil)
	_, err := run(t, listCmd, domain.RoleProvider)
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}
