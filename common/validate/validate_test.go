package validate

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIsIdentifier(t *testing.T) {
	Convey("TestIsIdentifier", t, func() {
		Convey("合法标识符放行", func() {
			So(IsIdentifier("t_order"), ShouldBeTrue)
			So(IsIdentifier("f_user_id"), ShouldBeTrue)
			So(IsIdentifier("_tmp"), ShouldBeTrue)
			So(IsIdentifier("T1"), ShouldBeTrue)
		})

		Convey("SQL 片段与特殊字符拒绝", func() {
			So(IsIdentifier(""), ShouldBeFalse)
			So(IsIdentifier("1table"), ShouldBeFalse)
			So(IsIdentifier("t_order; DROP TABLE t_user"), ShouldBeFalse)
			So(IsIdentifier("t_order--"), ShouldBeFalse)
			So(IsIdentifier("t.order"), ShouldBeFalse)
			So(IsIdentifier("t order"), ShouldBeFalse)
		})

		Convey("超长标识符拒绝", func() {
			So(IsIdentifier(strings.Repeat("a", 64)), ShouldBeTrue)
			So(IsIdentifier(strings.Repeat("a", 65)), ShouldBeFalse)
		})
	})
}
