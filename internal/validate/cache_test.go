package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/iface"
)

type fakeFS struct {
	mtimes   map[string]int64
	siblings map[string][]string
}

func (f *fakeFS) FileMtime(path string) (int64, error) { return f.mtimes[path], nil }
func (f *fakeFS) FindBinariesUnder(dir string) ([]string, error) {
	return f.siblings[dir], nil
}

type fakeProber struct {
	calls  int
	failed bool
}

func (p *fakeProber) Probe(sig iface.Signature) (bool, error) {
	p.calls++
	return p.failed, nil
}

func TestValidateDisabledIsNoOp(t *testing.T) {
	prober := &fakeProber{failed: true}
	c := New(&fakeFS{}, prober, NewIgnoreList(nil), false)
	err := c.Validate("/plugins/foo.so", iface.Signature{})
	assert.NoError(t, err)
	assert.Equal(t, 0, prober.calls, "a disabled cache must never probe")
}

func TestValidateIgnoreListedIsNoOp(t *testing.T) {
	prober := &fakeProber{failed: true}
	c := New(&fakeFS{}, prober, NewIgnoreList([]string{"/plugins/foo.so"}), true)
	err := c.Validate("/plugins/foo.so", iface.Signature{})
	assert.NoError(t, err)
	assert.Equal(t, 0, prober.calls)
}

func TestValidateProbesOnceThenTrustsFreshSideFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/foo.so"
	fs := &fakeFS{mtimes: map[string]int64{path: 100}}
	prober := &fakeProber{failed: false}
	c := New(fs, prober, NewIgnoreList(nil), true)

	require.NoError(t, c.Validate(path, iface.Signature{}))
	assert.Equal(t, 1, prober.calls)

	// Second call with the same mtime must hit the side-file cache
	// rather than probing again.
	require.NoError(t, c.Validate(path, iface.Signature{}))
	assert.Equal(t, 1, prober.calls)
}

func TestValidateReprobesAfterMtimeChanges(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/foo.so"
	fs := &fakeFS{mtimes: map[string]int64{path: 100}}
	prober := &fakeProber{failed: false}
	c := New(fs, prober, NewIgnoreList(nil), true)

	require.NoError(t, c.Validate(path, iface.Signature{}))
	assert.Equal(t, 1, prober.calls)

	fs.mtimes[path] = 200
	require.NoError(t, c.Validate(path, iface.Signature{}))
	assert.Equal(t, 2, prober.calls)
}

func TestValidateFailedProbeReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/foo.so"
	fs := &fakeFS{mtimes: map[string]int64{path: 100}}
	prober := &fakeProber{failed: true}
	c := New(fs, prober, NewIgnoreList(nil), true)

	err := c.Validate(path, iface.Signature{})
	assert.Error(t, err)
}

func TestIgnoreListAddAndContains(t *testing.T) {
	l := NewIgnoreList(nil)
	l.Add("/opt/app/plugins/sub/foo.so")
	assert.True(t, l.Contains("/opt/app/plugins/sub/foo.so"))
	assert.True(t, l.Contains(`C:\other\plugins\sub\foo.so`), "matching is by the plugins/ suffix only")
	assert.False(t, l.Contains("/opt/app/plugins/sub/bar.so"))
}

func TestSideFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/foo.nxpv"
	require.NoError(t, WriteSideFile(path, SideFile{Timestamp: 42, Valid: true}))

	sf, ok, err := ReadSideFile(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), sf.Timestamp)
	assert.True(t, sf.Valid)
}

func TestReadSideFileMissingIsNotAnError(t *testing.T) {
	sf, ok, err := ReadSideFile("/does/not/exist.nxpv")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, SideFile{}, sf)
}
