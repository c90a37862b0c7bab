package patent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/nuri428/mcp-kipris/pkg/kipris"
	"github.com/nuri428/mcp-kipris/pkg/tools"
	. "github.com/smartystreets/goconvey/convey"
)

const twoPatents = `<?xml version="1.0" encoding="UTF-8"?>
<response>
  <header><successYN>Y</successYN><resultCode>00</resultCode><resultMsg>NORMAL SERVICE.</resultMsg></header>
  <body>
    <items>
      <PatentUtilityInfo>
        <Applicant>주식회사 엘지에너지솔루션</Applicant>
        <ApplicationDate>20250123</ApplicationDate>
        <ApplicationNumber>1020250010491</ApplicationNumber>
        <InventionName>음극 조성물</InventionName>
        <RegistrationStatus>공개</RegistrationStatus>
      </PatentUtilityInfo>
      <PatentUtilityInfo>
        <Applicant>주식회사 엘지에너지솔루션</Applicant>
        <ApplicationDate>20240101</ApplicationDate>
        <ApplicationNumber>1020240000001</ApplicationNumber>
        <InventionName>양극 활물질</InventionName>
        <RegistrationStatus>등록</RegistrationStatus>
      </PatentUtilityInfo>
    </items>
  </body>
</response>`

// fakeKIPRIS records every query it receives and answers with body.
type fakeKIPRIS struct {
	mu      sync.Mutex
	queries []url.Values
	paths   []string
	body    string
	status  int
}

func (f *fakeKIPRIS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.Query())
	f.paths = append(f.paths, r.URL.Path)
	f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(f.body))
}

func newPipelineTool(t *testing.T, name string, fake *fakeKIPRIS) (*SearchTool, *httptest.Server) {
	srv := httptest.NewServer(fake)
	client, err := kipris.New("secret-key", kipris.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	tool, err := NewSearchTool(definition(name), client, nil)
	if err != nil {
		t.Fatal(err)
	}
	return tool, srv
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a KIPRIS host returning two patents", t, func() {
		fake := &fakeKIPRIS{body: twoPatents}
		tool, srv := newPipelineTool(t, "patent_righter_search", fake)
		defer srv.Close()

		result, err := tool.Handler(ctx, newMockRequest("patent_righter_search", map[string]any{"righter_name": "엘지에너지솔루션"}))
		So(err, ShouldBeNil)
		text := resultText(result)

		Convey("Then the request hit the endpoint with the credential injected", func() {
			So(fake.paths, ShouldResemble, []string{"/openapi/rest/patUtiModInfoSearchSevice/rightHolerSearchInfo"})
			query := fake.queries[0]
			So(query.Get("accessKey"), ShouldEqual, "secret-key")
			So(query.Get("rightHoler"), ShouldEqual, "엘지에너지솔루션")
			So(query.Get("docsCount"), ShouldEqual, "10")
			So(query.Get("descSort"), ShouldEqual, "true")
			_, hasLastvalue := query["lastvalue"]
			So(hasLastvalue, ShouldBeFalse)
		})

		Convey("Then both patents are rendered in a markdown table", func() {
			So(result.IsError, ShouldBeFalse)
			So(text, ShouldContainSubstring, "1020250010491")
			So(text, ShouldContainSubstring, "1020240000001")
			So(text, ShouldContainSubstring, "RegistrationStatus")
			So(strings.Count(text, "\n"), ShouldEqual, 3)
		})
	})

	Convey("Given a KIPRIS host answering with an error status", t, func() {
		fake := &fakeKIPRIS{status: http.StatusInternalServerError}
		tool, srv := newPipelineTool(t, "patent_free_search", fake)
		defer srv.Close()

		result, err := tool.Handler(ctx, newMockRequest("patent_free_search", map[string]any{"word": "배터리"}))

		Convey("Then the caller sees the no-result message, not an error", func() {
			So(err, ShouldBeNil)
			So(result.IsError, ShouldBeFalse)
			So(resultText(result), ShouldEqual, tools.NoResultText)
		})
	})

	Convey("Given a KIPRIS host answering with malformed XML", t, func() {
		fake := &fakeKIPRIS{body: "<response><body><items>"}
		tool, srv := newPipelineTool(t, "patent_detail_search", fake)
		defer srv.Close()

		result, err := tool.Handler(ctx, newMockRequest("patent_detail_search", map[string]any{"application_number": "1020250010491"}))

		Convey("Then it degrades to the no-result message", func() {
			So(err, ShouldBeNil)
			So(resultText(result), ShouldEqual, tools.NoResultText)
		})
	})

	Convey("Given a KIPRIS kipo endpoint returning a single bibliography item", t, func() {
		fake := &fakeKIPRIS{body: `<response><header><resultCode>00</resultCode></header><body><items><item><applicationNumber>1020250010491</applicationNumber><inventionTitle>음극 조성물</inventionTitle></item></items></body></response>`}
		tool, srv := newPipelineTool(t, "patent_summary_search", fake)
		defer srv.Close()

		result, err := tool.Handler(ctx, newMockRequest("patent_summary_search", map[string]any{"application_number": "1020250010491"}))
		So(err, ShouldBeNil)

		Convey("Then the ServiceKey credential is used and the item becomes one JSON record", func() {
			So(fake.queries[0].Get("ServiceKey"), ShouldEqual, "secret-key")
			So(fake.queries[0].Get("applicationNumber"), ShouldEqual, "1020250010491")
			text := resultText(result)
			So(strings.HasPrefix(text, "["), ShouldBeTrue)
			So(text, ShouldContainSubstring, `"inventionTitle": "음극 조성물"`)
		})
	})
}
