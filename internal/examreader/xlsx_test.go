package examreader

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestFromXLSX(t *testing.T) {
	data := workbook(t, [][]any{
		{2, "Capital of France?", "Paris", "Lyon", "Nice"},
		{"", "Explain recursion."},
		{1, ""},
		{3, "Largest planet?", "Jupiter"},
	})

	qs, err := FromXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("FromXLSX: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	if qs[0].Group != 2 || qs[0].Choices.Len() != 3 {
		t.Errorf("first question = %+v", qs[0])
	}
	if qs[1].Group != 1 || qs[1].Choices != nil || qs[1].Order != 2 {
		t.Errorf("second question = %+v", qs[1])
	}
	if qs[2].Text != "Largest planet?" || qs[2].Order != 3 {
		t.Errorf("third question = %+v", qs[2])
	}
}

func TestFromXLSXErrors(t *testing.T) {
	if _, err := FromXLSX(bytes.NewReader([]byte("not a workbook"))); !errors.Is(err, ErrIO) {
		t.Errorf("expected IO error for garbage input, got %v", err)
	}

	data := workbook(t, nil)
	if _, err := FromXLSX(bytes.NewReader(data)); !errors.Is(err, ErrTemplate) {
		t.Errorf("expected template error for empty sheet, got %v", err)
	}
}
