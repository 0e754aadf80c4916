package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIOCatalog_ExactMatchOnly(t *testing.T) {
	c := DefaultIOCatalog()

	assert.True(t, c.IsIOOperation("pandas.read_csv"))
	assert.True(t, c.IsIOOperation("json.load"))
	assert.True(t, c.IsIOOperation("xml.etree.ElementTree.parse"))

	assert.False(t, c.IsIOOperation("pandas.read_csv_extra"), "no prefix matching")
	assert.False(t, c.IsIOOperation("read_csv"), "no suffix matching")
	assert.False(t, c.IsIOOperation("Pandas.read_csv"), "case sensitive")
	assert.False(t, c.IsIOOperation("pd.read_csv"), "aliases are resolved before lookup")
}

func TestIOCatalog_BareCalls(t *testing.T) {
	c := DefaultIOCatalog()
	for _, name := range []string{"open", "DataLoader", "load_model", "save_model"} {
		assert.True(t, c.IsBareIOCall(name), name)
	}
	assert.False(t, c.IsBareIOCall("print"))
}

func TestIOCatalog_WithExtendsCopy(t *testing.T) {
	base := DefaultIOCatalog()
	ext := base.With("mylib.fetch", "  ")

	assert.True(t, ext.IsIOOperation("mylib.fetch"))
	assert.True(t, ext.IsIOOperation("torch.save"))
	assert.True(t, ext.IsBareIOCall("open"))
	assert.False(t, base.IsIOOperation("mylib.fetch"))
}

func TestParseList(t *testing.T) {
	got := ParseList("# header\nos\n\n  sys  \n#skip\njson\n")
	assert.Equal(t, []string{"os", "sys", "json"}, got)
}

func TestModuleCatalog_LeadingSegment(t *testing.T) {
	c := DefaultModuleCatalog()

	assert.True(t, c.IsStdlib("os"))
	assert.True(t, c.IsStdlib("os.path"))
	assert.True(t, c.IsKnown("xml.etree.ElementTree"))
	assert.True(t, c.IsKnown("numpy"))
	assert.False(t, c.IsStdlib("numpy"))
	assert.False(t, c.IsKnown("helpers"))
	assert.False(t, c.IsKnown("<relative>.helpers"))
}

func TestModuleCatalog_LoadThirdPartyFile(t *testing.T) {
	c := NewModuleCatalog([]string{"os"}, nil)

	n, err := c.LoadThirdPartyFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)
	assert.Zero(t, n)

	path := filepath.Join(t.TempDir(), "prebuilt_libs.txt")
	require.NoError(t, os.WriteFile(path, []byte("# libs\ninhouse_sdk\n\nvendorlib\n"), 0o644))

	n, err = c.LoadThirdPartyFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, c.IsKnown("inhouse_sdk.client"))
	assert.True(t, c.IsKnown("vendorlib"))
	assert.False(t, c.IsStdlib("vendorlib"))
}
