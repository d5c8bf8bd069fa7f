package types

import "fmt"

// FileType is the declared type of a file in a plugin bundle
type FileType string

const (
	FileTypePHP  FileType = "php"
	FileTypeCSS  FileType = "css"
	FileTypeJS   FileType = "js"
	FileTypeTxt  FileType = "txt"
	FileTypeMD   FileType = "md"
	FileTypeJSON FileType = "json"
)

// AllFileTypes returns all valid file types
func AllFileTypes() []FileType {
	return []FileType{
		FileTypePHP,
		FileTypeCSS,
		FileTypeJS,
		FileTypeTxt,
		FileTypeMD,
		FileTypeJSON,
	}
}

// IsValid checks if the file type is one of the closed set
func (t FileType) IsValid() bool {
	switch t {
	case FileTypePHP,
		FileTypeCSS,
		FileTypeJS,
		FileTypeTxt,
		FileTypeMD,
		FileTypeJSON:
		return true
	default:
		return false
	}
}

// String returns the string representation of the file type
func (t FileType) String() string {
	return string(t)
}

// ParseFileType parses a string into a FileType
func ParseFileType(s string) (FileType, error) {
	ft := FileType(s)
	if !ft.IsValid() {
		return "", fmt.Errorf("invalid file type: %s", s)
	}
	return ft, nil
}
