package export_test

import (
	"bytes"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/skillmatrix/internal/adapters/export"
)

const sample = "\uFEFFEmployee;Skill;Self;Manager\nAnn Lee;Go;4;3\n\"Smith; John\";SQL;2;\n"

func TestParseCSV(t *testing.T) {
	Convey("Given a backend export with a BOM", t, func() {
		rows, err := export.ParseCSV([]byte(sample))

		So(err, ShouldBeNil)
		So(rows, ShouldHaveLength, 3)
		So(rows[0][0], ShouldEqual, "Employee")
		So(rows[2][0], ShouldEqual, "Smith; John")
		So(rows[2][3], ShouldEqual, "")
	})

	Convey("Given an empty export", t, func() {
		_, err := export.ParseCSV([]byte("\uFEFF"))
		So(errors.Is(err, export.ErrEmpty), ShouldBeTrue)
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Writing rows back produces the backend format", t, func() {
		rows, _ := export.ParseCSV([]byte(sample))
		var buf bytes.Buffer

		So(export.WriteCSV(&buf, rows), ShouldBeNil)
		So(buf.String(), ShouldStartWith, "\uFEFFEmployee;Skill;Self;Manager\n")
		So(buf.String(), ShouldContainSubstring, "\"Smith; John\";SQL;2;")
	})
}

func TestCSVToXLSX(t *testing.T) {
	Convey("Given a backend export", t, func() {
		var buf bytes.Buffer
		err := export.CSVToXLSX(&buf, "Assessments", []byte(sample))
		So(err, ShouldBeNil)

		f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
		So(err, ShouldBeNil)
		defer func() { _ = f.Close() }()

		Convey("The workbook has the named sheet with every row", func() {
			So(f.GetSheetList(), ShouldResemble, []string{"Assessments"})
			rows, err := f.GetRows("Assessments")
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 3)
			So(rows[1], ShouldResemble, []string{"Ann Lee", "Go", "4", "3"})
		})

		Convey("Integer cells are stored as numbers", func() {
			typ, err := f.GetCellType("Assessments", "C2")
			So(err, ShouldBeNil)
			So(typ, ShouldNotEqual, excelize.CellTypeSharedString)
			So(typ, ShouldNotEqual, excelize.CellTypeInlineString)
		})
	})

	Convey("Given no rows", t, func() {
		err := export.WriteXLSX(&bytes.Buffer{}, "", nil)
		So(errors.Is(err, export.ErrEmpty), ShouldBeTrue)
	})
}
