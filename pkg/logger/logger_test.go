package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When initialized with defaults", func() {
			err := Init()

			Convey("Then Get should return a logger", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithFormat("json")), ShouldBeNil)

		Convey("When logging with fields and a request id", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			Named("pricing").With(String("model", "default")).Info(ctx, "predicted",
				Float64("price", 10.5),
				Error(errors.New("boom")),
			)

			Convey("Then the entry should carry every field", func() {
				var entry map[string]any
				So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
				So(entry["msg"], ShouldEqual, "predicted")
				So(entry["component"], ShouldEqual, "pricing")
				So(entry["model"], ShouldEqual, "default")
				So(entry["price"], ShouldEqual, 10.5)
				So(entry["request_id"], ShouldEqual, "req-1")
				So(entry["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised above debug", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Debug(context.Background(), "hidden")
			Get().Info(context.Background(), "hidden too")

			Convey("Then nothing should be written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then known levels should be accepted", func() {
			for _, level := range []string{"debug", "info", "", "warn", "WARNING", "error"} {
				So(SetLevelString(level), ShouldBeNil)
			}
		})

		Convey("Then unknown levels should be rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
