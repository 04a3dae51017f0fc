package terminal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/de-tools/jyotish-atlas/pkg/services/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, req orchestrator.Request) (domain.AnalysisResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.AnalysisResponse), args.Error(1)
}

func (m *mockRunner) Profile(ctx context.Context, person domain.BirthDetails) (domain.Profile, error) {
	args := m.Called(ctx, person)
	return args.Get(0).(domain.Profile), args.Error(1)
}

func runCLI(t *testing.T, runner Runner, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := NewCLI(Options{Runner: runner, Output: &out})
	cli.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	cli.Command().SetArgs(args)
	cli.Command().SetOut(&out)
	cli.Command().SetErr(&out)
	err := cli.ExecuteContext(context.Background())
	return out.String(), err
}

var baseArgs = []string{"analyze", "--name", "Test", "--date", "1990-05-15", "--time", "10:30", "--location", "Karachi", "--offset", "5"}

func TestAnalyzeCmd(t *testing.T) {
	runner := &mockRunner{}
	runner.On("Run", mock.Anything, mock.MatchedBy(func(req orchestrator.Request) bool {
		return req.Person.Name == "Test" &&
			req.Person.UTCOffset == 5 &&
			req.Entry == orchestrator.EntryModules &&
			req.Partner.Name == nil &&
			assert.ObjectsAreEqual([]string{"Career", "Health"}, req.Modules)
	})).Return(domain.AnalysisResponse{
		Name: "Test",
		Results: []domain.ModuleResult{
			{Module: domain.Career, Analysis: "Career text."},
			{Module: domain.Health, Analysis: "Health text."},
		},
	}, nil)

	out, err := runCLI(t, runner, append(baseArgs, "--module", "Career", "--module", "Health")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Astrological Report for Test")
	assert.Contains(t, out, "Birth Details: 1990-05-15 10:30 (UTC+5.0), Location: Karachi")
	assert.Contains(t, out, "Career text.")
	assert.Less(t, bytes.Index([]byte(out), []byte("Career")), bytes.Index([]byte(out), []byte("Health")))
	runner.AssertExpectations(t)
}

func TestAnalyzeCmd_PartnerFlags(t *testing.T) {
	runner := &mockRunner{}
	runner.On("Run", mock.Anything, mock.MatchedBy(func(req orchestrator.Request) bool {
		p := req.Partner
		return req.Entry == orchestrator.EntryAnalyze &&
			p.Name != nil && *p.Name == "P" &&
			p.UTCOffset != nil && *p.UTCOffset == 0 &&
			p.Location == nil &&
			req.Format == domain.FormatPDF
	})).Return(domain.AnalysisResponse{Name: "Test", ReportPath: "reports/test_1.pdf"}, nil)

	out, err := runCLI(t, runner, append(baseArgs, "--partner-name", "P", "--partner-offset", "0", "--format", "pdf")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to reports/test_1.pdf")
}

func TestAnalyzeCmd_Errors(t *testing.T) {
	runner := &mockRunner{}
	runner.On("Run", mock.Anything, mock.Anything).Return(domain.AnalysisResponse{}, errors.New("chart failed"))

	_, err := runCLI(t, runner, baseArgs...)
	assert.EqualError(t, err, "chart failed")

	_, err = runCLI(t, runner, append(baseArgs, "--format", "odt")...)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = runCLI(t, runner, "analyze", "--name", "Test")
	assert.Error(t, err)
}

func TestAnalyzeCmd_Gender(t *testing.T) {
	runner := &mockRunner{}
	runner.On("Run", mock.Anything, mock.MatchedBy(func(req orchestrator.Request) bool {
		return req.Gender == domain.GenderNonBinary
	})).Return(domain.AnalysisResponse{Name: "Test"}, nil)

	_, err := runCLI(t, runner, append(baseArgs, "--gender", "non_binary")...)
	require.NoError(t, err)
	runner.AssertExpectations(t)

	_, err = runCLI(t, runner, append(baseArgs, "--gender", "robot")...)
	assert.ErrorIs(t, err, domain.ErrUnsupportedGender)
}

func TestProfileCmd(t *testing.T) {
	runner := &mockRunner{}
	runner.On("Profile", mock.Anything, domain.BirthDetails{
		Name: "Test", BirthDate: "1990-05-15", BirthTime: "10:30", Location: "Karachi", UTCOffset: 5,
	}).Return(domain.Profile{Name: "Test", Message: "Dear Test, based on your Venus in Leo."}, nil)

	args := append([]string{"profile"}, baseArgs[1:]...)
	out, err := runCLI(t, runner, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "Profile for Test")
	assert.Contains(t, out, "Dear Test, based on your Venus in Leo.")
	runner.AssertExpectations(t)
}

func TestModulesCmd(t *testing.T) {
	out, err := runCLI(t, nil, "modules")
	require.NoError(t, err)
	for _, id := range domain.AllModules {
		assert.Contains(t, out, id.String())
		assert.Contains(t, out, id.Slug())
	}
	assert.Contains(t, out, "needs partner details")
}

func TestShowCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.docx")
	require.NoError(t, os.WriteFile(path, []byte("Astrological Report for Test\n"), 0o644))

	out, err := runCLI(t, nil, "show", path)
	require.NoError(t, err)
	assert.Equal(t, "Astrological Report for Test\n", out)

	_, err = runCLI(t, nil, "show", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
