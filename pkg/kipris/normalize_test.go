package kipris

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	ctx := context.Background()

	Convey("Given response documents", t, func() {
		Convey("A single child element decodes to a mapping", func() {
			tree := Normalize(ctx, `<response><body><items><item><a>1</a></item></items></body></response>`)
			item := Lookup(tree, MustParsePath("response.body.items.item"), nil)

			m, ok := item.(map[string]any)
			So(ok, ShouldBeTrue)
			So(m["a"], ShouldEqual, "1")
		})

		Convey("Repeated siblings decode to an ordered sequence", func() {
			tree := Normalize(ctx, `<response><body><items><item><a>1</a></item><item><a>2</a></item></items></body></response>`)
			items := Lookup(tree, MustParsePath("response.body.items.item"), nil)

			list, ok := items.([]any)
			So(ok, ShouldBeTrue)
			So(len(list), ShouldEqual, 2)
			So(list[0].(map[string]any)["a"], ShouldEqual, "1")
			So(list[1].(map[string]any)["a"], ShouldEqual, "2")
		})

		Convey("An XML declaration is accepted", func() {
			tree := Normalize(ctx, `<?xml version="1.0" encoding="UTF-8"?><response><header><resultCode>00</resultCode></header></response>`)
			So(Lookup(tree, MustParsePath("response.header.resultCode"), nil), ShouldEqual, "00")
		})

		Convey("Malformed XML degrades to an empty tree", func() {
			So(Normalize(ctx, `<response><body>`), ShouldBeEmpty)
			So(Normalize(ctx, `this is not xml`), ShouldBeEmpty)
		})

		Convey("An empty body is an empty tree", func() {
			So(Normalize(ctx, ""), ShouldBeEmpty)
			So(Normalize(ctx, "  \n"), ShouldBeEmpty)
		})
	})
}

func TestTruncate(t *testing.T) {
	Convey("truncate counts runes, not bytes", t, func() {
		So(truncate("특허검색", 2), ShouldEqual, "특허...")
		So(truncate("abc", 5), ShouldEqual, "abc")
	})
}
