package chartjs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmatrix/internal/adapters/chartjs"
	"github.com/okian/skillmatrix/internal/domain/chart"
	"github.com/okian/skillmatrix/internal/domain/model"
)

func skillRadar() chart.Config {
	cfg, err := chart.BuildSkillRadar([]model.SkillScores{
		{Skill: model.Skill{ID: 1, Name: "Distributed systems design"}, Scores: model.ScoreSet{Self: 4, Manager: 3}},
		{Skill: model.Skill{ID: 2, Name: "SQL"}, Scores: model.ScoreSet{Self: 2}},
	})
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestRendererThroughRegistry(t *testing.T) {
	Convey("Given a registry drawing through the Chart.js renderer", t, func() {
		r := chartjs.NewRenderer()
		reg := chart.NewRegistry(r)
		ctx := context.Background()

		_, err := reg.Render(ctx, "skillsChart", skillRadar())
		So(err, ShouldBeNil)

		Convey("The document is published under its canvas", func() {
			doc, ok := r.Document("skillsChart")
			So(ok, ShouldBeTrue)
			So(doc.Canvas, ShouldEqual, "skillsChart")
			So(doc.Config.Type, ShouldEqual, "radar")
			So(doc.Config.Data.Labels, ShouldResemble, []string{"Distributed systems…", "SQL"})
			So(doc.FullLabels[0], ShouldEqual, "Distributed systems design")
			So(doc.Tooltips[0][0], ShouldEqual, "Self-assessment: 4 (Advanced)")
			So(doc.Tooltips[1][1], ShouldEqual, "Manager assessment: 0 (Unrated)")
			So(doc.Config.Options.Scales, ShouldContainKey, "r")
		})

		Convey("Rendering again replaces the instance", func() {
			first, _ := r.Document("skillsChart")
			_, err := reg.Render(ctx, "skillsChart", skillRadar())
			So(err, ShouldBeNil)
			second, _ := r.Document("skillsChart")
			So(second.ID, ShouldNotEqual, first.ID)
			So(r.Canvases(), ShouldResemble, []string{"skillsChart"})
		})

		Convey("A value update changes data and tooltip together", func() {
			So(reg.UpdateValue("skillsChart", 1, 0, 5), ShouldBeNil)
			doc, _ := r.Document("skillsChart")
			So(doc.Config.Data.Datasets[1].Data[0], ShouldEqual, 5)
			So(doc.Tooltips[1][0], ShouldEqual, "Manager assessment: 5 (Expert)")
		})

		Convey("An out of range update is rejected", func() {
			err := reg.UpdateValue("skillsChart", 4, 0, 5)
			So(errors.Is(err, chart.ErrOutOfRange), ShouldBeTrue)
		})

		Convey("Destroy unpublishes the document", func() {
			So(reg.DestroyAll(), ShouldBeNil)
			_, ok := r.Document("skillsChart")
			So(ok, ShouldBeFalse)
			So(r.Canvases(), ShouldBeEmpty)
		})

		Convey("The document marshals to Chart.js JSON", func() {
			inst, ok := reg.Live("skillsChart")
			So(ok, ShouldBeTrue)
			raw, err := json.Marshal(inst)
			So(err, ShouldBeNil)
			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)
			cfg := decoded["config"].(map[string]any)
			So(cfg["type"], ShouldEqual, "radar")
		})
	})
}

func TestDoughnutDocument(t *testing.T) {
	Convey("Given a role doughnut", t, func() {
		cfg, err := chart.BuildRoleDistribution([]model.RoleCount{
			{Role: model.RoleEmployee, Count: 3},
			{Role: model.RoleManager, Count: 1},
		})
		So(err, ShouldBeNil)
		r := chartjs.NewRenderer()
		inst, err := r.Create(context.Background(), "roleChart", cfg)
		So(err, ShouldBeNil)

		doc, _ := r.Document("roleChart")

		So(doc.ID, ShouldEqual, inst.ID())
		So(doc.Config.Options.Scales, ShouldBeNil)
		So(doc.Config.Options.Plugins.Legend.Position, ShouldEqual, "right")
		So(doc.Tooltips[0][0], ShouldEndWith, "3 (75%)")
	})

	Convey("Given an empty canvas id", t, func() {
		_, err := chartjs.NewRenderer().Create(context.Background(), "", chart.Config{})
		So(err, ShouldNotBeNil)
	})
}
