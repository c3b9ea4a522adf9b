package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "finrag", Short: "root"}
	root.PersistentFlags().String("api-url", "", "API base URL")
	AddHelpJSONFlag(root)

	upload := &cobra.Command{Use: "upload <file.pdf>", Short: "Upload a PDF", Run: func(*cobra.Command, []string) {}}
	upload.Flags().BoolP("quiet", "q", false, "No progress")
	upload.Flags().String("tag", "", "Tag")
	_ = upload.MarkFlagRequired("tag")

	hidden := &cobra.Command{Use: "debug", Hidden: true, Run: func(*cobra.Command, []string) {}}

	root.AddCommand(upload, hidden)
	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(testTree())

	assert.Equal(t, "finrag", schema.Name)
	require.Len(t, schema.Subcommands, 1)

	upload := schema.Subcommands[0]
	assert.Equal(t, "upload", upload.Name)
	assert.Equal(t, "upload <file.pdf>", upload.Use)

	require.Len(t, upload.Flags, 3)
	assert.Equal(t, "quiet", upload.Flags[0].Name)
	assert.Equal(t, "q", upload.Flags[0].Shorthand)
	assert.Equal(t, "bool", upload.Flags[0].Type)
	assert.Equal(t, "tag", upload.Flags[1].Name)
	assert.True(t, upload.Flags[1].Required)
	assert.Equal(t, "api-url", upload.Flags[2].Name)
	assert.True(t, upload.Flags[2].Inherited)
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchema(&buf, testTree()))

	var decoded CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "finrag", decoded.Name)
}

func TestFindTargetCommand(t *testing.T) {
	root := testTree()

	assert.Equal(t, "upload", findTargetCommand(root, []string{"upload"}).Name())
	assert.Equal(t, "finrag", findTargetCommand(root, []string{"unknown"}).Name())
	assert.Equal(t, "finrag", findTargetCommand(root, nil).Name())
}
