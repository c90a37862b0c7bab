package utils

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	. "github.com/smartystreets/goconvey/convey"
)

func newMockRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "test", Arguments: args}}
}

func TestParams(t *testing.T) {
	Convey("Given a request with mixed arguments", t, func() {
		req := newMockRequest(map[string]any{
			"word":       "배터리",
			"empty":      "",
			"docs_count": float64(10),
			"fraction":   1.5,
			"desc_sort":  true,
			"nothing":    nil,
		})

		Convey("Strings are read and required empties rejected", func() {
			word, err := GetStringParam(req, "word", true)
			So(err, ShouldBeNil)
			So(word, ShouldEqual, "배터리")

			_, err = GetStringParam(req, "empty", true)
			So(errors.Is(err, ErrMissingParam), ShouldBeTrue)

			value, err := GetStringParam(req, "empty", false)
			So(err, ShouldBeNil)
			So(value, ShouldBeEmpty)
		})

		Convey("Whole JSON numbers convert to int, fractions do not", func() {
			n, err := GetIntParam(req, "docs_count", true)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 10)

			_, err = GetIntParam(req, "fraction", true)
			So(errors.Is(err, ErrParamType), ShouldBeTrue)
		})

		Convey("Type mismatches are reported", func() {
			_, err := GetBoolParam(req, "word", false)
			So(errors.Is(err, ErrParamType), ShouldBeTrue)

			_, err = GetFloat64Param(req, "word", false)
			So(errors.Is(err, ErrParamType), ShouldBeTrue)
		})

		Convey("Null and absent values count as missing", func() {
			So(HasParam(req, "nothing"), ShouldBeFalse)
			So(HasParam(req, "absent"), ShouldBeFalse)
			So(HasParam(req, "desc_sort"), ShouldBeTrue)

			_, err := GetBoolParam(req, "nothing", true)
			So(errors.Is(err, ErrMissingParam), ShouldBeTrue)
		})

		Convey("HandleParameterError prefixes the message", func() {
			result := HandleParameterError(errors.New("'applicant' is required"))
			So(result.IsError, ShouldBeTrue)

			text, ok := mcp.AsTextContent(result.Content[0])
			So(ok, ShouldBeTrue)
			So(text.Text, ShouldEqual, "Invalid input: 'applicant' is required")
		})
	})
}
