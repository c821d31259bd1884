package constants

import "strings"

// XLSXMimeType is the content type of rendered artifacts.
const XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXExt is the extension of rendered artifacts and tabular templates.
const XLSXExt = "xlsx"

// DefinitionExts lists declarative template extensions in lookup order.
var DefinitionExts = []string{"json", "yaml", "yml"}

// AllowedDocumentExtensions holds the document extensions accepted for extraction.
var AllowedDocumentExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsXLSX reports whether name carries the xlsx extension.
func IsXLSX(name string) bool {
	i := strings.LastIndexByte(name, '.')
	return i >= 0 && NormalizeExt(name[i:]) == XLSXExt
}
