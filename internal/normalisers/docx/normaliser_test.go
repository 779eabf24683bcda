package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// createTestDOCX creates a minimal DOCX file in memory.
func createTestDOCX(t *testing.T, documentXML, coreXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	add := func(name, body string) {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	add("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types/>`)
	if documentXML != "" {
		add("word/document.xml", documentXML)
	}
	if coreXML != "" {
		add("docProps/core.xml", coreXML)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const docHeader = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{MIMEType}, New().SupportedMIMETypes())
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	docXML := docHeader + `
<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> World</w:t></w:r></w:p>
<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>para</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>In a table</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
</w:body></w:document>`
	coreXML := `<?xml version="1.0"?><cp:coreProperties xmlns:cp="x" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Quarterly Report</dc:title></cp:coreProperties>`

	raw := &domain.RawDocument{
		Item:     domain.ItemHandle{ExternalID: "report.docx", Name: "report.docx"},
		MIMEType: MIMEType,
		Content:  createTestDOCX(t, docXML, coreXML),
	}

	docs, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Quarterly Report", docs[0].Document.DisplayName)
	assert.Equal(t, "Hello World\nSecond\tpara\nIn a table", docs[0].Text)
}

func TestNormalise_NoCoreProps(t *testing.T) {
	raw := &domain.RawDocument{
		Item:    domain.ItemHandle{ExternalID: "a.docx", Name: "a.docx"},
		Content: createTestDOCX(t, docHeader+`<w:p><w:r><w:t>x</w:t></w:r></w:p></w:body></w:document>`, ""),
	}

	docs, err := New().Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "a.docx", docs[0].Document.DisplayName)
}

func TestNormalise_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"not a zip", []byte("plain text")},
		{"missing document part", createTestDOCX(t, "", "")},
		{"malformed xml", createTestDOCX(t, docHeader+`<w:p><w:t>oops</w:p>`, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Normalise(context.Background(), &domain.RawDocument{Content: tt.content})
			assert.ErrorIs(t, err, domain.ErrConversion)
		})
	}

	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
