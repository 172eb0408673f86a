package sheets

import (
	"fmt"
	"strings"
)

// ColumnLetter converts a zero-based column index to A1 notation letters:
// 0 is A, 25 is Z, 26 is AA.
func ColumnLetter(index int) string {
	if index < 0 {
		return ""
	}
	var letters []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		letters = append([]byte{byte('A' + (n-1)%26)}, letters...)
	}
	return string(letters)
}

// quoteSheet quotes a sheet title for use in a range.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// rowRange addresses columns [0, width) of a 1-based sheet row.
func rowRange(title string, row, width int) string {
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s!A%d:%s%d", quoteSheet(title), row, ColumnLetter(width-1), row)
}

// cellRange addresses one cell; row is 1-based, column zero-based.
func cellRange(title string, row, column int) string {
	return fmt.Sprintf("%s!%s%d", quoteSheet(title), ColumnLetter(column), row)
}
