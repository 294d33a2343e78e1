package app

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/domain/model"
)

const hrStatsBody = `{"success":true,
	"stats":{"total_assessments":40},
	"roles":[{"role":"employee","count":3},{"role":"manager","count":1}],
	"departments":[{"department":"IT","count":4,"avg_score":3.5},{"department":"Sales","count":2,"avg_score":2.8}],
	"score_distribution":[{"score":4,"count":6},{"score":2,"count":3}]}`

func TestDashboard(t *testing.T) {
	Convey("Given a dashboard backend", t, func() {
		ctx := context.Background()
		b := newBackend()
		defer b.Close()
		b.reply("GET /api/dashboard/stats", http.StatusOK, `{"success":true,"stats":{"total_users":12,"avg_score":3.8}}`)
		b.reply("GET /api/hr/stats", http.StatusOK, hrStatsBody)
		b.reply("GET /hr/api/departments", http.StatusOK, `{"success":true,"departments":[{"id":1,"name":"IT"},{"id":2,"name":"Sales"}]}`)

		Convey("HR viewers get counters, the department select and the analytics charts", func() {
			s := newTestSession(b, clockwork.NewFakeClock(), WithUser(9), WithRole(model.RoleHR))
			defer func() { _ = s.Close(ctx) }()

			dash, err := s.LoadDashboard(ctx)
			So(err, ShouldBeNil)
			So(dash.HR, ShouldNotBeNil)
			So(dash.HR.Distribution, ShouldResemble, map[model.Score]int{4: 6, 2: 3})
			So(len(dash.Departments), ShouldEqual, 2)

			doc := s.Document()
			users, _ := doc.Counter("total_users")
			So(users, ShouldEqual, "12")
			avg, _ := doc.Counter("avg_score")
			So(avg, ShouldEqual, "3.8")
			total, _ := doc.Counter("total_assessments")
			So(total, ShouldEqual, "40")
			So(len(doc.Options(SelectDepartment)), ShouldEqual, 2)

			for _, canvas := range []string{CanvasRoles, CanvasDistribution, CanvasDepartments} {
				_, live := s.charts.Live(canvas)
				So(live, ShouldBeTrue)
				So(doc.SectionVisible(canvas), ShouldBeTrue)
			}
			So(s.Charts().Canvases(), ShouldHaveLength, 3)

			Convey("and the refresh worker reloads them", func() {
				So(s.refresh(ctx, CanvasRoles), ShouldBeNil)
				So(b.Hits("GET /api/hr/stats"), ShouldEqual, 2)
			})
		})

		Convey("Employees only get their counters", func() {
			s := newTestSession(b, clockwork.NewFakeClock(), WithUser(1))
			defer func() { _ = s.Close(ctx) }()

			dash, err := s.LoadDashboard(ctx)
			So(err, ShouldBeNil)
			So(dash.HR, ShouldBeNil)
			So(b.Hits("GET /api/hr/stats"), ShouldEqual, 0)
			So(s.charts.Len(), ShouldEqual, 0)
		})

		Convey("One failing request fails the whole load", func() {
			b.reply("GET /api/hr/stats", http.StatusInternalServerError, `{"success":false,"message":"Stats unavailable"}`)
			s := newTestSession(b, clockwork.NewFakeClock(), WithUser(9), WithRole(model.RoleAdmin))
			defer func() { _ = s.Close(ctx) }()

			_, err := s.LoadDashboard(ctx)
			So(err, ShouldNotBeNil)
			So(toastMessages(s), ShouldContain, "Stats unavailable")
			_, ok := s.Document().Counter("total_users")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Counters print whole numbers without decimals", t, func() {
		So(formatCounter(12), ShouldEqual, "12")
		So(formatCounter(3.8), ShouldEqual, "3.8")
		So(formatCounter(0), ShouldEqual, "0")
	})
}

func TestExport(t *testing.T) {
	Convey("Given a skills export", t, func() {
		ctx := context.Background()
		b := newBackend()
		defer b.Close()
		csvBody := "\ufeffID;Name;Category\n1;Go;Backend\n2;SQL;Data\n"
		b.handle("GET /export/skills/csv", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			_, _ = w.Write([]byte(csvBody))
		})
		s := newTestSession(b, clockwork.NewFakeClock(), WithUser(9), WithRole(model.RoleHR))
		defer func() { _ = s.Close(ctx) }()

		Convey("CSV is written as received", func() {
			var buf bytes.Buffer
			So(s.Export(ctx, client.ExportSkills, FormatCSV, &buf), ShouldBeNil)
			So(buf.String(), ShouldEqual, csvBody)
		})

		Convey("XLSX is a workbook with one sheet named after the export", func() {
			var buf bytes.Buffer
			So(s.Export(ctx, client.ExportSkills, FormatXLSX, &buf), ShouldBeNil)

			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer func() { _ = f.Close() }()
			rows, err := f.GetRows("skills")
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, [][]string{
				{"ID", "Name", "Category"},
				{"1", "Go", "Backend"},
				{"2", "SQL", "Data"},
			})
		})

		Convey("A failed download is reported", func() {
			var buf bytes.Buffer
			err := s.Export(ctx, client.ExportUsers, FormatCSV, &buf)
			So(err, ShouldNotBeNil)
			So(buf.Len(), ShouldEqual, 0)
			So(toastMessages(s), ShouldContain, "not found")
		})
	})

	Convey("Formats parse from flags", t, func() {
		f, err := ParseFormat("xlsx")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FormatXLSX)
		_, err = ParseFormat("pdf")
		So(err, ShouldNotBeNil)
	})
}
