package editor

import (
	"testing"
	"testing/fstest"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditor_ReadFallsThroughToBase(t *testing.T) {
	base := memfs.New()
	require.NoError(t, util.WriteFile(base, "/app/file.txt", []byte("from base"), 0o644))

	ed := New(base)
	content, err := ed.Read("/app/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "from base", string(content))
}

func TestEditor_WriteShadowsBaseUntilCommit(t *testing.T) {
	base := memfs.New()
	require.NoError(t, util.WriteFile(base, "/app/file.txt", []byte("old"), 0o644))

	ed := New(base)
	require.NoError(t, ed.Write("/app/file.txt", []byte("new")))

	content, err := ed.Read("/app/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))

	// Base untouched before Commit.
	onDisk, err := util.ReadFile(base, "/app/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "old", string(onDisk))

	require.NoError(t, ed.Commit())
	onDisk, err = util.ReadFile(base, "/app/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(onDisk))
}

func TestEditor_DeleteHidesFileAndCommitsRemoval(t *testing.T) {
	base := memfs.New()
	require.NoError(t, util.WriteFile(base, "/app/file.txt", []byte("x"), 0o644))

	ed := New(base)
	ed.Delete("/app/file.txt")
	assert.False(t, ed.Exists("/app/file.txt"))

	_, err := ed.Read("/app/file.txt")
	assert.Error(t, err)

	require.NoError(t, ed.Commit())
	_, err = base.Stat("/app/file.txt")
	assert.Error(t, err)
}

func TestEditor_DeleteAbsentPathIsNoop(t *testing.T) {
	ed := New(memfs.New())
	ed.Delete("/nothing/here.txt")
	require.NoError(t, ed.Commit())
}

func TestEditor_WriteAfterDeleteResurrects(t *testing.T) {
	base := memfs.New()
	require.NoError(t, util.WriteFile(base, "/f", []byte("a"), 0o644))

	ed := New(base)
	ed.Delete("/f")
	require.NoError(t, ed.Write("/f", []byte("b")))
	assert.True(t, ed.Exists("/f"))

	content, err := ed.Read("/f")
	require.NoError(t, err)
	assert.Equal(t, "b", string(content))
	assert.Empty(t, ed.DeletedFiles())
}

func TestEditor_Rename(t *testing.T) {
	base := memfs.New()
	require.NoError(t, util.WriteFile(base, "/app/webapp/localService/metadata.xml", []byte("<x/>"), 0o644))

	ed := New(base)
	require.NoError(t, ed.Rename(
		"/app/webapp/localService/metadata.xml",
		"/app/webapp/localService/mainService/metadata.xml"))

	assert.False(t, ed.Exists("/app/webapp/localService/metadata.xml"))
	content, err := ed.Read("/app/webapp/localService/mainService/metadata.xml")
	require.NoError(t, err)
	assert.Equal(t, "<x/>", string(content))
}

func TestEditor_JSONRoundTrip(t *testing.T) {
	ed := New(memfs.New())
	require.NoError(t, ed.WriteJSON("/pkg.json", map[string]string{"name": "app"}))

	var got map[string]string
	require.NoError(t, ed.ReadJSON("/pkg.json", &got))
	assert.Equal(t, "app", got["name"])

	content, err := ed.Read("/pkg.json")
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), content[len(content)-1])
}

func TestEditor_CopyTemplate(t *testing.T) {
	src := fstest.MapFS{
		"tpl.xml": &fstest.MapFile{Data: []byte("<doc name=\"{{.Name}}\"/>")},
	}
	ed := New(memfs.New())
	require.NoError(t, ed.CopyTemplate(src, "tpl.xml", "/out.xml", struct{ Name string }{"svc"}))

	content, err := ed.Read("/out.xml")
	require.NoError(t, err)
	assert.Equal(t, `<doc name="svc"/>`, string(content))
}

func TestEditor_StagedFilesSorted(t *testing.T) {
	ed := New(memfs.New())
	require.NoError(t, ed.Write("/b", []byte("1")))
	require.NoError(t, ed.Write("/a", []byte("2")))
	assert.Equal(t, []string{"/a", "/b"}, ed.StagedFiles())
}
