package types_test

import (
	"testing"
	"time"

	"github.com/okian/houseprice/internal/domain/limits"
	"github.com/okian/houseprice/internal/domain/model"
	"github.com/okian/houseprice/internal/domain/pricing"
	types "github.com/okian/houseprice/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPrediction(t *testing.T) {
	Convey("Given a model prediction", t, func() {
		p, err := pricing.Default().Predict(pricing.NewFeatures(150, 3, 2, 2010, 0.25, 2, 7))
		So(err, ShouldBeNil)

		Convey("When it is converted", func() {
			out := types.NewPrediction(p)

			Convey("Then prices should be formatted in reais", func() {
				So(out.Price, ShouldEqual, p.Price)
				So(out.FormattedPrice, ShouldEqual, "R$\u00a079.389.309,37")
				So(out.FormattedIntercept, ShouldEqual, "R$\u00a0618.861,02")
				So(out.Clamped, ShouldBeFalse)
			})

			Convey("Then attributes should keep positional order", func() {
				So(out.Attributes, ShouldHaveLength, pricing.NumAttributes)
				So(out.Attributes[0].Key, ShouldEqual, "squareFootage")
				So(out.Attributes[0].Value, ShouldEqual, 150)
				So(out.Attributes[0].FormattedContribution, ShouldEqual, "R$\u00a037.600.758,75")
			})
		})
	})
}

func TestRanking(t *testing.T) {
	Convey("Given the default importance list", t, func() {
		out := types.NewRanking(pricing.Default().Importance())

		Convey("Then ranks should start at one", func() {
			So(out, ShouldHaveLength, pricing.NumAttributes)
			So(out[0].Rank, ShouldEqual, 1)
			So(out[0].Name, ShouldEqual, "Square_Footage")
			So(out[len(out)-1].Rank, ShouldEqual, pricing.NumAttributes)
		})

		Convey("Then magnitudes should be plain numbers in descending order", func() {
			So(out[0].Importance, ShouldEqual, 250671.725)
			So(out[0].Coefficient, ShouldEqual, 250671.725)
			for i := 1; i < len(out); i++ {
				So(out[i].Importance, ShouldBeLessThanOrEqualTo, out[i-1].Importance)
			}
		})

		Convey("When the list is empty", func() {
			So(types.NewRanking(nil), ShouldBeEmpty)
		})
	})
}

func TestModelInfo(t *testing.T) {
	Convey("Given the default model and limits", t, func() {
		info := types.NewModelInfo(pricing.Default(), limits.Default())

		Convey("Then every attribute should carry its coefficient and range", func() {
			So(info.Currency, ShouldEqual, "BRL")
			So(info.Intercept, ShouldEqual, 618861.0186467685)
			So(info.Attributes, ShouldHaveLength, pricing.NumAttributes)
			So(info.Attributes[0].Coefficient, ShouldEqual, 250671.725)
			So(info.Attributes[0].Range, ShouldResemble, limits.Default()[0])
		})
	})
}

func TestValuation(t *testing.T) {
	Convey("Given a stored job", t, func() {
		created := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		job := model.Job{
			ID:        "job-1",
			CreatedAt: created,
			Items: []model.Item{
				{State: model.ItemDone, Price: 618861.02},
				{State: model.ItemFailed, Err: "bad input"},
				{State: model.ItemPending},
			},
			Completed: 1,
			Failed:    1,
		}

		Convey("When it still has pending items", func() {
			v := types.NewValuation(job)

			Convey("Then it should be pending with per-item results", func() {
				So(v.Status, ShouldEqual, types.JobPending)
				So(v.Total, ShouldEqual, 3)
				So(v.CreatedAt, ShouldEqual, created)
				So(v.Items[0].FormattedPrice, ShouldEqual, "R$\u00a0618.861,02")
				So(v.Items[1].Status, ShouldEqual, string(model.ItemFailed))
				So(v.Items[1].Error, ShouldEqual, "bad input")
				So(v.Items[1].Price, ShouldEqual, 0)
				So(v.Items[2].Index, ShouldEqual, 2)
			})
		})

		Convey("When every item is finished", func() {
			job.Items = job.Items[:2]
			v := types.NewValuation(job)

			Convey("Then it should be done", func() {
				So(v.Status, ShouldEqual, types.JobDone)
			})
		})
	})
}
