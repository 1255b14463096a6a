// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"

	"system-atlas/internal/apperrors"
)

// maxXMLPartBytes bounds a single decompressed archive member.
const maxXMLPartBytes = 32 << 20

var (
	wordParagraphRe = regexp.MustCompile(`<w:p(?:\s[^>]*)?/?>|</w:p>|<w:br(?:\s[^>]*)?/?>`)
	wordTabRe       = regexp.MustCompile(`<w:tab(?:\s[^>]*)?/?>`)

	odfParagraphRe = regexp.MustCompile(`</text:(?:p|h)>|<text:line-break(?:\s[^>]*)?/?>`)
	odfTabRe       = regexp.MustCompile(`<text:tab(?:\s[^>]*)?/?>`)
	odfSpaceRe     = regexp.MustCompile(`<text:s(?:\s[^>]*)?/?>`)

	anyTagRe        = regexp.MustCompile(`<[^>]*>`)
	multiSpaceRe    = regexp.MustCompile(`[ \x{00a0}]+`)
	spaceNewlineRe  = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	extraNewlinesRe = regexp.MustCompile(`\n{3,}`)
)

// openArchive opens an in-memory zip archive.
func openArchive(data []byte) (*zip.Reader, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperrors.NewUnreadableError("error opening archive", err)
	}
	return reader, nil
}

// readPart reads one archive member up to maxXMLPartBytes.
func readPart(file *zip.File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, maxXMLPartBytes+1))
	if err != nil {
		return "", err
	}
	if len(content) > maxXMLPartBytes {
		return "", fmt.Errorf("%s exceeds %d bytes", file.Name, maxXMLPartBytes)
	}
	return string(content), nil
}

// extractDocxText reads the main document of a Word file together with its
// headers and footers, which often carry the case reference.
func extractDocxText(data []byte, _ Options) (*Document, error) {
	reader, err := openArchive(data)
	if err != nil {
		return nil, err
	}

	var documentFile *zip.File
	var headerFiles, footerFiles []*zip.File
	for _, file := range reader.File {
		switch {
		case file.Name == "word/document.xml":
			documentFile = file
		case strings.HasPrefix(file.Name, "word/header") && strings.HasSuffix(file.Name, ".xml"):
			headerFiles = append(headerFiles, file)
		case strings.HasPrefix(file.Name, "word/footer") && strings.HasSuffix(file.Name, ".xml"):
			footerFiles = append(footerFiles, file)
		}
	}

	if documentFile == nil {
		return nil, apperrors.NewUnreadableError("word/document.xml not found in the archive", nil)
	}

	sortParts(headerFiles)
	sortParts(footerFiles)

	var parts []string
	for _, file := range append(append(headerFiles, documentFile), footerFiles...) {
		raw, err := readPart(file)
		if err != nil {
			if file == documentFile {
				return nil, apperrors.NewUnreadableError("error reading document body", err)
			}
			continue
		}
		if text := wordXMLToText(raw); text != "" {
			parts = append(parts, text)
		}
	}

	return &Document{Text: strings.Join(parts, "\n\n")}, nil
}

// wordXMLToText flattens WordprocessingML into plain text. Paragraphs,
// including those in table cells, end up on separate lines.
func wordXMLToText(raw string) string {
	text := wordParagraphRe.ReplaceAllString(raw, "\n")
	text = wordTabRe.ReplaceAllString(text, "\t")
	text = anyTagRe.ReplaceAllString(text, "")
	return cleanText(html.UnescapeString(text))
}

// extractOdtText reads content.xml and styles.xml (headers and footers)
// of an OpenDocument text file.
func extractOdtText(data []byte, _ Options) (*Document, error) {
	reader, err := openArchive(data)
	if err != nil {
		return nil, err
	}

	var contentFile, stylesFile *zip.File
	for _, file := range reader.File {
		switch file.Name {
		case "content.xml":
			contentFile = file
		case "styles.xml":
			stylesFile = file
		}
	}

	if contentFile == nil {
		return nil, apperrors.NewUnreadableError("content.xml not found in the archive", nil)
	}

	raw, err := readPart(contentFile)
	if err != nil {
		return nil, apperrors.NewUnreadableError("error reading content.xml", err)
	}

	parts := []string{}
	if stylesFile != nil {
		if stylesRaw, err := readPart(stylesFile); err == nil {
			if header := odfXMLToText(odfMasterStyles(stylesRaw)); header != "" {
				parts = append(parts, header)
			}
		}
	}
	if body := odfXMLToText(raw); body != "" {
		parts = append(parts, body)
	}

	return &Document{Text: strings.Join(parts, "\n\n")}, nil
}

// odfMasterStyles returns the master-styles section of styles.xml, where
// page headers and footers live. Other sections hold no document text.
func odfMasterStyles(raw string) string {
	start := strings.Index(raw, "<office:master-styles")
	if start < 0 {
		return ""
	}
	end := strings.Index(raw[start:], "</office:master-styles>")
	if end < 0 {
		return raw[start:]
	}
	return raw[start : start+end]
}

// odfXMLToText flattens ODF XML into plain text.
func odfXMLToText(raw string) string {
	if raw == "" {
		return ""
	}
	text := odfParagraphRe.ReplaceAllString(raw, "\n")
	text = odfTabRe.ReplaceAllString(text, "\t")
	text = odfSpaceRe.ReplaceAllString(text, " ")
	text = anyTagRe.ReplaceAllString(text, "")
	return cleanText(html.UnescapeString(text))
}

// cleanText collapses runs of spaces and blank lines.
func cleanText(text string) string {
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = spaceNewlineRe.ReplaceAllString(text, "\n")
	text = extraNewlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// sortParts orders header1.xml, header2.xml, ... by name.
func sortParts(files []*zip.File) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
}
