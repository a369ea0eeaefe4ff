package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/houseprice/internal/adapters/http/api"
	service "github.com/okian/houseprice/internal/app"
	"github.com/okian/houseprice/internal/client"
	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/internal/domain/types"
	"github.com/okian/houseprice/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func golden() pricing.Features {
	return pricing.NewFeatures(150, 3, 2, 2010, 0.25, 2, 7)
}

func newServer(ctx context.Context) (*httptest.Server, func()) {
	svc := service.New(service.WithMaxBatchSize(10))
	_ = svc.Start(ctx)
	mux := http.NewServeMux()
	api.NewServer(svc, svc, api.WithClock(func() time.Time {
		return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	})).Register(ctx, mux)
	srv := httptest.NewServer(api.RequestIDMiddleware(mux))
	return srv, func() {
		srv.Close()
		svc.Stop()
	}
}

func TestClient(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a client for a running server", t, func() {
		srv, stop := newServer(ctx)
		defer stop()
		c, err := client.New(srv.URL, client.WithTimeout(2*time.Second), client.WithRequestID("test-run"))
		So(err, ShouldBeNil)

		Convey("When a house is predicted", func() {
			p, err := c.Predict(ctx, golden())

			Convey("Then the server estimate should be decoded", func() {
				So(err, ShouldBeNil)
				So(p.Price, ShouldEqual, 79389309.36778778)
				So(p.FormattedPrice, ShouldEqual, "R$\u00a079.389.309,37")
			})
		})

		Convey("When an out of range house is predicted", func() {
			f := golden()
			f.Set(pricing.GarageSize, 50)
			_, err := c.Predict(ctx, f)

			Convey("Then an APIError with the violations should be returned", func() {
				var apiErr *client.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Status, ShouldEqual, http.StatusUnprocessableEntity)
				So(apiErr.Code, ShouldEqual, "out_of_range")
				So(len(apiErr.Violations), ShouldEqual, 1)
				So(apiErr.Violations[0].Attribute, ShouldEqual, "Garage_Size")
			})
		})

		Convey("When a report is fetched", func() {
			report, name, err := c.Report(ctx, golden())

			Convey("Then the text and file name should be returned", func() {
				So(err, ShouldBeNil)
				So(name, ShouldEqual, "relatorio_preco_casa_2025-01-02.txt")
				So(report, ShouldContainSubstring, "Intercepto (base): R$\u00a0618.861,02")
			})
		})

		Convey("When the ranking and model are fetched", func() {
			ranking, err1 := c.Importance(ctx)
			info, err2 := c.Model(ctx)

			Convey("Then both should decode", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(ranking[0].Name, ShouldEqual, "Square_Footage")
				So(info.Intercept, ShouldEqual, 618861.0186467685)
			})
		})

		Convey("When a batch is submitted and awaited", func() {
			ack, err := c.SubmitValuation(ctx, "client-batch", []pricing.Features{golden(), golden()})
			So(err, ShouldBeNil)

			waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			v, err := c.WaitValuation(waitCtx, ack.JobID, 5*time.Millisecond)

			Convey("Then both items should be priced", func() {
				So(ack.Status, ShouldEqual, "accepted")
				So(err, ShouldBeNil)
				So(v.Status, ShouldEqual, types.JobDone)
				So(v.Completed, ShouldEqual, 2)
			})

			Convey("And resubmitting should report a duplicate", func() {
				again, err := c.SubmitValuation(ctx, "client-batch", []pricing.Features{golden()})
				So(err, ShouldBeNil)
				So(again.Duplicate, ShouldBeTrue)
			})
		})

		Convey("When an unknown batch is fetched", func() {
			_, err := c.Valuation(ctx, "missing")

			Convey("Then a 404 APIError should be returned", func() {
				var apiErr *client.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Status, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given an invalid server url", t, func() {
		_, err := client.New("not a url")

		Convey("Then New should fail", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a server that is briefly overloaded", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"code":"backpressure","message":"queue full"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"status":"accepted","job_id":"j"}`))
		}))
		defer srv.Close()

		Convey("When the client retries", func() {
			c, _ := client.New(srv.URL, client.WithRetries(3, time.Millisecond))
			ack, err := c.SubmitValuation(ctx, "j", []pricing.Features{golden()})

			Convey("Then the submission should eventually succeed", func() {
				So(err, ShouldBeNil)
				So(ack.JobID, ShouldEqual, "j")
				So(calls.Load(), ShouldEqual, 3)
			})
		})

		Convey("When the client does not retry", func() {
			c, _ := client.New(srv.URL)
			_, err := c.SubmitValuation(ctx, "j", []pricing.Features{golden()})

			Convey("Then the backpressure error should surface", func() {
				var apiErr *client.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Code, ShouldEqual, "backpressure")
			})
		})
	})

	Convey("Given a server answering plain text errors", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "teapot", http.StatusTeapot)
		}))
		defer srv.Close()
		c, _ := client.New(srv.URL)

		Convey("Then ErrUnexpectedResponse should be returned", func() {
			_, err := c.Model(ctx)
			So(errors.Is(err, client.ErrUnexpectedResponse), ShouldBeTrue)
		})
	})
}
