package examreader

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/randomizer/internal/model"
)

// FromXLSX reads the first sheet of a workbook using the same column layout
// as FromCSV.
func FromXLSX(r io.Reader) ([]model.Question, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ioError(err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, invalidHeader("a worksheet", "none")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ioError(err)
	}

	i := 0
	return questionsFromRecords(func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		row := rows[i]
		i++
		return row, nil
	})
}
