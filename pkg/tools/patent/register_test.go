package patent

import (
	"strings"
	"testing"

	"github.com/nuri428/mcp-kipris/core"
	"github.com/nuri428/mcp-kipris/pkg/tools"
	. "github.com/smartystreets/goconvey/convey"
)

// TestRegisterPatentTools tests the RegisterPatentTools function
func TestRegisterPatentTools(t *testing.T) {
	Convey("Given the RegisterPatentTools function", t, func() {
		list, err := RegisterPatentTools(&mockSearcher{})
		So(err, ShouldBeNil)

		Convey("It should build one tool per definition", func() {
			So(len(list), ShouldEqual, len(Definitions()))
			So(len(list), ShouldEqual, 15)
		})

		Convey("Tool names should be unique", func() {
			seen := map[string]bool{}
			for _, tool := range list {
				name := tool.Handle().Name
				So(seen[name], ShouldBeFalse)
				seen[name] = true
			}
		})

		Convey("All registered tools should implement the core.Tool and tools.Tool interfaces", func() {
			for _, tool := range list {
				So(tool, ShouldImplement, (*core.Tool)(nil))
				So(tool, ShouldImplement, (*tools.Tool)(nil))
			}
		})

		Convey("Every tool should declare at least one required argument", func() {
			for _, tool := range list {
				So(tool.Handle().InputSchema.Required, ShouldNotBeEmpty)
			}
		})
	})
}

// TestToOpenAITools tests the OpenAI export of the patent tools
func TestToOpenAITools(t *testing.T) {
	Convey("Given the registered patent tools", t, func() {
		list, err := RegisterPatentTools(&mockSearcher{})
		So(err, ShouldBeNil)

		openaiTools := ToOpenAITools(list)

		Convey("Every tool should be exported", func() {
			So(len(openaiTools), ShouldEqual, len(list))
		})

		Convey("All tools should be in OpenAI function calling format", func() {
			for _, tool := range openaiTools {
				So(tool.Function.Name, ShouldNotBeEmpty)
				So(tool.Function.Description.Value, ShouldNotBeEmpty)
				So(tool.Function.Parameters["type"], ShouldEqual, "object")
				So(tool.Function.Parameters["properties"], ShouldNotBeNil)
				So(tool.Function.Parameters["required"], ShouldNotBeEmpty)
			}
		})
	})
}

func TestDefinitions(t *testing.T) {
	Convey("Given the search table", t, func() {
		definitions := Definitions()

		Convey("Every extraction path parses", func() {
			for _, def := range definitions {
				_, err := NewSearchTool(def, &mockSearcher{}, nil)
				So(err, ShouldBeNil)
			}
		})

		Convey("Foreign tools use the foreign result path and access key", func() {
			for _, def := range definitions {
				if !strings.HasPrefix(def.Endpoint, foreignPath) {
					continue
				}
				So(def.Path, ShouldEqual, foreignResultPath)
				So(def.CredentialField, ShouldEqual, "accessKey")
			}
		})

		Convey("Only the foreign applicant search renders all columns", func() {
			So(definition("foreign_patent_applicant_search").Columns, ShouldBeEmpty)
			So(definition("foreign_patent_free_search").Columns, ShouldResemble, summaryColumns)
		})
	})
}
