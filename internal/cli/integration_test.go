package cli_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	exitCode = 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("failed to run CLI: %v", err)
	}
	return outBuf.String(), errBuf.String(), exitCode
}

// TestCLI_EncodeDecode tests the encode and decode commands through files
func TestCLI_EncodeDecode(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "toonvert-test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	jsonContent := `{
		"name": "John Doe",
		"age": 30,
		"address": {
			"street": "123 Main St",
			"city": "Anytown"
		},
		"phones": [
			{"type": "home", "number": "555-1234"},
			{"type": "work", "number": "555-5678"}
		],
		"active": true
	}`
	jsonFile := filepath.Join(tempDir, "test.json")
	err = os.WriteFile(jsonFile, []byte(jsonContent), 0644)
	require.NoError(t, err)

	toonFile := filepath.Join(tempDir, "test.toon")
	stdout, stderr, code := runCLI(t, "", "encode", jsonFile, toonFile)
	require.Equal(t, 0, code, "encode failed: %s", stderr)
	assert.Contains(t, stdout, "Wrote "+toonFile)

	encoded, err := os.ReadFile(toonFile)
	require.NoError(t, err)
	toon := string(encoded)
	assert.Contains(t, toon, "active: true")
	assert.Contains(t, toon, "address:\n  city: Anytown\n  street: 123 Main St")
	assert.Contains(t, toon, "phones[2]{number,type}:")

	stdout, stderr, code = runCLI(t, "", "decode", toonFile)
	require.Equal(t, 0, code, "decode failed: %s", stderr)
	assert.JSONEq(t, jsonContent, stdout)
}

// TestCLI_StdinStdout tests encode with stdin input and stdout output
func TestCLI_StdinStdout(t *testing.T) {
	stdout, stderr, code := runCLI(t, `{"style": {"tone": "epic"}}`, "encode", "-")
	require.Equal(t, 0, code, "encode failed: %s", stderr)
	assert.Equal(t, "style:\n  tone: epic\n", stdout)

	stdout, stderr, code = runCLI(t, "style:\n  tone: epic", "decode", "-")
	require.Equal(t, 0, code, "decode failed: %s", stderr)
	assert.Equal(t, "{\n  \"style\": {\n    \"tone\": \"epic\"\n  }\n}\n", stdout)
}

// TestCLI_ReadField tests field extraction through the read command
func TestCLI_ReadField(t *testing.T) {
	stdout, stderr, code := runCLI(t, "", "read", "testdata/story.toon", "style.tone")
	require.Equal(t, 0, code, "read failed: %s", stderr)
	assert.Equal(t, "epic\n", stdout)

	stdout, _, code = runCLI(t, "", "read", "testdata/story.toon", "chapters.1.name")
	require.Equal(t, 0, code)
	assert.Equal(t, "The Summit\n", stdout)

	// a missing field is not an error, it prints an empty line
	stdout, _, code = runCLI(t, "", "read", "testdata/story.toon", "style.missing")
	require.Equal(t, 0, code)
	assert.Equal(t, "\n", stdout)

	// composite values come out as single-line JSON
	stdout, _, code = runCLI(t, "", "read", "testdata/story.toon", "style")
	require.Equal(t, 0, code)
	assert.Equal(t, "{\"themes\": [\"honor\", \"duty\"], \"tone\": \"epic\"}\n", stdout)
}

// TestCLI_ReadWholeDocument tests read without a field argument
func TestCLI_ReadWholeDocument(t *testing.T) {
	stdout, stderr, code := runCLI(t, "", "read", "testdata/story.toon")
	require.Equal(t, 0, code, "read failed: %s", stderr)
	assert.Contains(t, stdout, "\"title\": \"The Council of Legends\"")
	assert.Contains(t, stdout, "\"tone\": \"epic\"")
}

// TestCLI_Get tests the get command
func TestCLI_Get(t *testing.T) {
	stdout, stderr, code := runCLI(t, "", "get", "testdata/story.toon", "title")
	require.Equal(t, 0, code, "get failed: %s", stderr)
	assert.Equal(t, "The Council of Legends\n", stdout)
}

// TestCLI_GetRequiresField tests that get without a field argument fails
func TestCLI_GetRequiresField(t *testing.T) {
	_, stderr, code := runCLI(t, "", "get", "testdata/story.toon")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "field")
}

// TestCLI_GetIndexOutOfRange tests that an out-of-range index fails
func TestCLI_GetIndexOutOfRange(t *testing.T) {
	_, stderr, code := runCLI(t, "", "get", "testdata/story.toon", "chapters.9")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "out of range")
}

// TestCLI_UnknownCommand tests that an unknown command fails with usage
func TestCLI_UnknownCommand(t *testing.T) {
	stdout, stderr, code := runCLI(t, "", "frobnicate", "x.json")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stderr, "error:")
}

// TestCLI_NoArguments tests running without any command
func TestCLI_NoArguments(t *testing.T) {
	stdout, stderr, code := runCLI(t, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stderr, "error:")
}

// TestCLI_InvalidJSON tests encode with invalid JSON input
func TestCLI_InvalidJSON(t *testing.T) {
	_, stderr, code := runCLI(t, `{"name": "Invalid JSON, "age": 30}`, "encode", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "parsing error")
}

// TestCLI_MalformedTOON tests decode with a bad length marker
func TestCLI_MalformedTOON(t *testing.T) {
	_, stderr, code := runCLI(t, "items[5]: a,b", "decode", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "TOON decoding error")
}

// TestCLI_NoStrict tests that --no-strict relaxes validation
func TestCLI_NoStrict(t *testing.T) {
	stdout, stderr, code := runCLI(t, "items[5]: a,b", "decode", "--no-strict", "-")
	require.Equal(t, 0, code, "decode failed: %s", stderr)
	assert.Contains(t, stdout, "\"items\"")
}

// TestCLI_EncodeFlags tests the indent and delimiter overrides
func TestCLI_EncodeFlags(t *testing.T) {
	stdout, stderr, code := runCLI(t, `{"nested": {"k": 1}, "list": ["a", "b"]}`,
		"encode", "--indent", "4", "--delimiter", "|", "-")
	require.Equal(t, 0, code, "encode failed: %s", stderr)
	assert.Equal(t, "list[2]: a|b\nnested:\n    k: 1\n", stdout)
}

// TestCLI_ConfigFile tests that an explicit config file changes defaults
func TestCLI_ConfigFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "toonvert-config-test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configFile := filepath.Join(tempDir, "toonvert.yml")
	err = os.WriteFile(configFile, []byte("encode:\n  indent: 4\n"), 0644)
	require.NoError(t, err)

	stdout, stderr, code := runCLI(t, `{"a": {"b": 1}}`, "--config", configFile, "encode", "-")
	require.Equal(t, 0, code, "encode failed: %s", stderr)
	assert.Equal(t, "a:\n    b: 1\n", stdout)
}

// TestCLI_MissingFile tests reading a file that does not exist
func TestCLI_MissingFile(t *testing.T) {
	_, stderr, code := runCLI(t, "", "decode", "no-such-file.toon")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not found")
}

// TestCLI_Version tests the version flag
func TestCLI_Version(t *testing.T) {
	stdout, stderr, code := runCLI(t, "", "--version")
	require.Equal(t, 0, code, "version failed: %s", stderr)
	assert.Contains(t, stdout, "toonvert version")
}

// TestCLI_Help tests the help output
func TestCLI_Help(t *testing.T) {
	stdout, stderr, code := runCLI(t, "", "--help")
	require.Equal(t, 0, code, "help failed: %s", stderr)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "encode")
	assert.Contains(t, stdout, "decode")
	assert.Contains(t, stdout, "read")
	assert.Contains(t, stdout, "get")
}
