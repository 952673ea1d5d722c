package testutil

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// MultipartCSV builds a multipart request body with a CSV file part and
// optional extra form fields. It returns the body and its content type.
func MultipartCSV(t *testing.T, filename, csv string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err, "Failed to create file part")
	_, err = part.Write([]byte(csv))
	require.NoError(t, err, "Failed to write CSV content")

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v), "Failed to write form field")
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

// CSV joins rows into CSV content with a trailing newline. Each row is
// written as-is, so callers handle quoting themselves.
func CSV(rows ...string) string {
	return strings.Join(rows, "\n") + "\n"
}
