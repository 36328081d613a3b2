package coach

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDocumentsToleratesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, DocManagerNotes+".txt"), []byte("notes content"), 0o600))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, DocCompanyLeveling+".txt"), []byte("leveling content"), 0o600))

	docs, err := LoadDocuments(dir, zap.NewNop())

	require.NoError(t, err)
	assert.Len(t, docs, len(DocumentKeys), "every key present, missing ones empty")
	assert.Equal(t, "notes content", docs[DocManagerNotes])
	assert.Equal(t, "leveling content", docs[DocCompanyLeveling])
	assert.Empty(t, docs[DocPeerFeedback])
}
