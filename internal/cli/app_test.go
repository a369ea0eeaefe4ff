package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/houseprice/internal/adapters/http/api"
	service "github.com/okian/houseprice/internal/app"
	"github.com/okian/houseprice/internal/domain/limits"
	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var goldenFlags = []string{
	"--area", "150", "--bedrooms", "3", "--bathrooms", "2", "--year", "2010",
	"--lot", "0.25", "--garage", "2", "--neighborhood", "7",
}

func fixedNow() time.Time { return time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC) }

func run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	app := New(Options{Stdout: &stdout, Stderr: &stderr, Now: fixedNow})
	err := app.Run(append([]string{"houseprice"}, args...))
	return stdout.String(), stderr.String(), err
}

func cmd(name string, extra ...string) []string {
	return append(append([]string{name}, goldenFlags...), extra...)
}

func writeCSV(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "houses.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAppLocal(t *testing.T) {
	Convey("Given the tool running in process", t, func() {
		Convey("When a house is predicted", func() {
			out, _, err := run(cmd("predict")...)

			Convey("Then the formatted price should be printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "R$\u00a079.389.309,37\n")
			})
		})

		Convey("When a house is predicted as JSON", func() {
			out, _, err := run(cmd("predict", "--json")...)

			Convey("Then the breakdown should decode", func() {
				So(err, ShouldBeNil)
				var p types.Prediction
				So(json.Unmarshal([]byte(out), &p), ShouldBeNil)
				So(p.Price, ShouldEqual, 79389309.36778778)
				So(p.Attributes, ShouldHaveLength, pricing.NumAttributes)
			})
		})

		Convey("When an attribute flag is omitted", func() {
			_, _, err := run("predict", "--area", "150")

			Convey("Then the prediction should be rejected as invalid input", func() {
				So(errors.Is(err, pricing.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When an attribute is outside its range", func() {
			args := cmd("predict")
			args[2] = "100000"
			_, _, limited := run(args...)
			out, _, unlimited := run(append([]string{"--no-limits"}, args...)...)

			Convey("Then limits should apply unless disabled", func() {
				So(errors.Is(limited, limits.ErrOutOfRange), ShouldBeTrue)
				So(unlimited, ShouldBeNil)
				So(out, ShouldStartWith, "R$")
			})
		})

		Convey("When a report is written to a file", func() {
			path := filepath.Join(t.TempDir(), "report.txt")
			_, stderr, err := run(cmd("report", "--output", path)...)

			Convey("Then the file should hold the report", func() {
				So(err, ShouldBeNil)
				So(stderr, ShouldContainSubstring, path)
				body, rerr := os.ReadFile(path)
				So(rerr, ShouldBeNil)
				So(string(body), ShouldContainSubstring, "R$\u00a079.389.309,37")
			})
		})

		Convey("When a report is written to stdout", func() {
			out, _, err := run(cmd("report", "-o", "-")...)

			Convey("Then it should be printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "R$\u00a0618.861,02")
			})
		})

		Convey("When importance is requested", func() {
			out, _, err := run("importance")

			Convey("Then a ranked table should be printed", func() {
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out), "\n")
				So(lines, ShouldHaveLength, pricing.NumAttributes+1)
				So(lines[0], ShouldStartWith, "RANK")
				So(lines[1], ShouldContainSubstring, "Square_Footage")
			})
		})

		Convey("When a batch file is priced", func() {
			path := writeCSV(t, "150,3,2,2010,0.25,2,7\n150,,2,2010,0.25,2,7\n")
			out, _, err := run("batch", "--input", path)

			Convey("Then every row should be reported", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "R$\u00a079.389.309,37")
				So(out, ShouldContainSubstring, "failed")
				So(out, ShouldContainSubstring, "1 priced, 1 failed")
			})
		})

		Convey("When a batch is printed as JSON", func() {
			path := writeCSV(t, "150,3,2,2010,0.25,2,7\n")
			out, _, err := run("batch", "-i", path, "--format", "json")

			Convey("Then the valuation should decode", func() {
				So(err, ShouldBeNil)
				var v types.Valuation
				So(json.Unmarshal([]byte(out), &v), ShouldBeNil)
				So(v.Status, ShouldEqual, types.JobDone)
				So(v.Completed, ShouldEqual, 1)
			})
		})

		Convey("When the batch format or level is unknown", func() {
			path := writeCSV(t, "150,3,2,2010,0.25,2,7\n")
			_, _, badFormat := run("batch", "-i", path, "--format", "xml")
			_, _, badLevel := run("--log-level", "loud", "importance")

			Convey("Then a usage error should be returned", func() {
				So(errors.Is(badFormat, ErrUsage), ShouldBeTrue)
				So(errors.Is(badLevel, ErrUsage), ShouldBeTrue)
			})
		})
	})
}

// countingBackend records batch calls and answers nothing else.
type countingBackend struct {
	Backend
	batches int
}

func (b *countingBackend) Batch(context.Context, []pricing.Features) (types.Valuation, error) {
	b.batches++
	return types.Valuation{}, nil
}

func TestBatchFormatCheckedFirst(t *testing.T) {
	Convey("Given a batch with an unknown format", t, func() {
		b := &countingBackend{}
		var stdout, stderr bytes.Buffer
		app := New(Options{Stdout: &stdout, Stderr: &stderr, Now: fixedNow, Backend: b})
		err := app.Run([]string{"houseprice", "batch", "-i", filepath.Join(t.TempDir(), "absent.csv"), "--format", "xml"})

		Convey("Then it should fail before reading input or pricing", func() {
			So(errors.Is(err, ErrUsage), ShouldBeTrue)
			So(b.batches, ShouldEqual, 0)
			So(stdout.String(), ShouldBeEmpty)
		})
	})
}

func TestAppRemote(t *testing.T) {
	Convey("Given the tool pointed at a server", t, func() {
		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc, svc, api.WithClock(fixedNow)).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer func() {
			srv.Close()
			svc.Stop()
		}()

		Convey("When a house is predicted", func() {
			out, _, err := run(append([]string{"--url", srv.URL}, cmd("predict")...)...)

			Convey("Then the server estimate should be printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "R$\u00a079.389.309,37\n")
			})
		})

		Convey("When the server rejects the house", func() {
			_, _, err := run("--url", srv.URL, "predict", "--area", "150")

			Convey("Then the error should surface", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a batch is submitted", func() {
			path := writeCSV(t, "squareFootage,bedrooms,bathrooms,yearBuilt,lotSize,garageSize,neighborhoodQuality\n150,3,2,2010,0.25,2,7\n80,2,1,1995,0.1,1,5\n")
			out, _, err := run("--url", srv.URL, "batch", "-i", path, "--request-id", "cli-batch", "--format", "json")

			Convey("Then the tool should wait for the finished valuation", func() {
				So(err, ShouldBeNil)
				var v types.Valuation
				So(json.Unmarshal([]byte(out), &v), ShouldBeNil)
				So(v.JobID, ShouldEqual, "cli-batch")
				So(v.Status, ShouldEqual, types.JobDone)
				So(v.Completed, ShouldEqual, 2)
			})
		})
	})
}
