package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	set := Default()
	require.NoError(t, set.Validate())

	assert.Empty(t, set.Creators, "creator directory starts empty")
	assert.NotEmpty(t, set.Projects)
	assert.NotEmpty(t, set.Applications)
}

func TestValidate_DuplicateID(t *testing.T) {
	set := Default()
	set.Projects = append(set.Projects, set.Projects[0])

	assert.ErrorContains(t, set.Validate(), "duplicate project")
}

func TestValidate_DanglingApplication(t *testing.T) {
	set := Default()
	set.Applications[0].ProjectID = "missing"

	assert.ErrorContains(t, set.Validate(), "unknown project")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	content := `
creators:
  - id: c-1
    name: Ana Ruiz
    email: ana@example.com
    specialties: [photography, drone]
    location: Austin, TX
    rating: 4.8
    hourly_rate: 9500
    verified: true
projects:
  - id: p-1
    title: Loft listing
    status: open
    budget: 60000
applications:
  - id: a-1
    project_id: p-1
    creator_id: c-1
    creator_name: Ana Ruiz
    message: Happy to shoot this loft next week.
    status: pending
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := Load(path)
	require.NoError(t, err)
	require.Len(t, set.Creators, 1)
	assert.Equal(t, 9500, set.Creators[0].HourlyRate)
	assert.Len(t, set.Creators[0].Specialties, 2)
	assert.Equal(t, "p-1", set.Applications[0].ProjectID)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projects:\n  - id: p-1\n    title: x\n    status: archived\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
