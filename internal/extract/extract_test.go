// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"system-atlas/internal/apperrors"
)

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p w:rsidR="00A1"><w:pPr><w:pStyle w:val="Titel"/></w:pPr><w:r><w:t>Bescheid</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Ihr Antrag wird </w:t></w:r><w:r><w:t>abgelehnt &amp; bleibt es.</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Frist</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>1 Monat</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
</w:body></w:document>`

func TestFromBytes_PlainText(t *testing.T) {
	doc, err := FromBytes("bescheid.txt", []byte("\ufeffZeile eins\r\nZeile zwei\n"), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "Zeile eins\nZeile zwei", doc.Text)
	assert.Equal(t, "bescheid.txt", doc.Filename)
	assert.Equal(t, "Plain Text", doc.Format)
}

func TestFromBytes_Markdown(t *testing.T) {
	doc, err := FromBytes("notiz.MD", []byte("# Bescheid\n\nText"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "Markdown", doc.Format)
}

func TestFromBytes_InvalidUTF8(t *testing.T) {
	_, err := FromBytes("bescheid.txt", []byte{0xff, 0xfe, 0x00, 0x41}, DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnreadable))
}

func TestFromBytes_Unsupported(t *testing.T) {
	for _, name := range []string{"scan.png", "tabelle.xlsx", "ohne-endung"} {
		_, err := FromBytes(name, []byte("x"), DefaultOptions())
		require.Error(t, err, name)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnsupportedFormat), name)
		assert.False(t, IsSupported(name))
	}
}

func TestFromBytes_EmptyDocument(t *testing.T) {
	_, err := FromBytes("leer.txt", []byte("  \n\t "), DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))
}

func TestFromBytes_TooLarge(t *testing.T) {
	_, err := FromBytes("gross.txt", []byte(strings.Repeat("a", 11)), Options{MaxBytes: 10, MaxPDFPages: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnreadable))
}

func TestFromBytes_Docx(t *testing.T) {
	data := buildArchive(t, map[string]string{
		"word/document.xml": docxBody,
		"word/header1.xml":  `<w:hdr><w:p><w:r><w:t>Az. 12-34/2024</w:t></w:r></w:p></w:hdr>`,
		"word/footer1.xml":  `<w:ftr><w:p><w:r><w:t>Seite 1</w:t></w:r></w:p></w:ftr>`,
	})

	doc, err := FromBytes("bescheid.docx", data, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "Word Document", doc.Format)
	assert.True(t, strings.HasPrefix(doc.Text, "Az. 12-34/2024"), doc.Text)
	assert.True(t, strings.HasSuffix(doc.Text, "Seite 1"), doc.Text)
	assert.Contains(t, doc.Text, "Bescheid\n")
	assert.Contains(t, doc.Text, "Ihr Antrag wird abgelehnt & bleibt es.")
	assert.Contains(t, doc.Text, "Frist\n\n1 Monat")
	assert.NotContains(t, doc.Text, "<")
	assert.NotContains(t, doc.Text, "\n\n\n")
}

func TestFromBytes_DocxWithoutBody(t *testing.T) {
	data := buildArchive(t, map[string]string{"word/styles.xml": "<w:styles/>"})

	_, err := FromBytes("kaputt.docx", data, DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnreadable))
}

func TestFromBytes_NotAnArchive(t *testing.T) {
	_, err := FromBytes("kaputt.odt", []byte("kein zip"), DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnreadable))
}

func TestFromBytes_Odt(t *testing.T) {
	data := buildArchive(t, map[string]string{
		"content.xml": `<office:document-content><office:body><office:text>` +
			`<text:h text:outline-level="1">Bescheid</text:h>` +
			`<text:p text:style-name="P1">Gegen diesen Bescheid<text:s text:c="2"/>ist Widerspruch zulässig.</text:p>` +
			`<text:p>Anhörung<text:tab/>erfolgt<text:line-break/>am 1.&#160;März</text:p>` +
			`</office:text></office:body></office:document-content>`,
		"styles.xml": `<office:document-styles><office:styles><style:style style:name="Standard"/></office:styles>` +
			`<office:master-styles><style:master-page><style:header><text:p>Aktenzeichen 7/24</text:p></style:header></style:master-page></office:master-styles>` +
			`</office:document-styles>`,
	})

	doc, err := FromBytes("bescheid.odt", data, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "OpenDocument Text", doc.Format)
	assert.Equal(t, "Aktenzeichen 7/24\n\nBescheid\nGegen diesen Bescheid ist Widerspruch zulässig.\nAnhörung\terfolgt\nam 1. März", doc.Text)
}

// buildPDF writes a minimal PDF with one line of Courier text per page and
// a correct cross-reference table.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	widths := strings.TrimSpace(strings.Repeat("600 ", 95))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding " +
			"/FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
	}

	var kids []string
	for _, text := range pages {
		pageNum := len(objects) + 1
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageNum+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
		strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestFromBytes_PDF(t *testing.T) {
	data := buildPDF(t, "Aktenzeichen 7/24", "Widerspruch binnen eines Monats")

	doc, err := FromBytes("bescheid.pdf", data, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "PDF Document", doc.Format)
	assert.Equal(t, 2, doc.PageCount)
	assert.Equal(t, "Aktenzeichen 7/24\n\nWiderspruch binnen eines Monats", doc.Text)
}

func TestFromBytes_PDFPageLimit(t *testing.T) {
	data := buildPDF(t, "Erste Seite", "Zweite Seite")

	doc, err := FromBytes("bescheid.pdf", data, Options{MaxPDFPages: 1, MaxBytes: 1 << 20})
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount, "the page count reports the whole document")
	assert.Equal(t, "Erste Seite", doc.Text)
}

func TestFromBytes_InvalidPDF(t *testing.T) {
	_, err := FromBytes("bescheid.pdf", []byte("%PDF-1.4\nnot really a pdf"), DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnreadable))
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bescheid.txt")
	require.NoError(t, os.WriteFile(path, []byte("Antrag abgelehnt."), 0600))

	doc, err := FromFile(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Antrag abgelehnt.", doc.Text)

	_, err = FromFile(filepath.Join(dir, "fehlt.txt"), DefaultOptions())
	assert.Error(t, err)

	_, err = FromFile(filepath.Join(dir, "bild.jpg"), DefaultOptions())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnsupportedFormat))
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".docx", ".md", ".odt", ".pdf", ".text", ".txt"}, SupportedExtensions())
}

func TestReconstructRowText(t *testing.T) {
	row := []pdf.Text{
		{S: "Bescheid", X: 100, W: 40, FontSize: 10},
		{S: "Der", X: 10, W: 15, FontSize: 10},
		{S: "zum", X: 30, W: 15, FontSize: 10},
		{S: "n", X: 45.5, W: 5, FontSize: 10},
	}

	// "zum" and "n" touch, the others are separated by visible gaps
	assert.Equal(t, "Der zumn Bescheid", reconstructRowText(row))
	assert.Equal(t, "", reconstructRowText(nil))
}

func TestAverageY(t *testing.T) {
	assert.Equal(t, 0.0, averageY(nil))
	assert.Equal(t, 15.0, averageY([]pdf.Text{{Y: 10}, {Y: 20}}))
}
