package sqlite

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractUp(t *testing.T) {
	Convey("Given a migration with both sections", t, func() {
		up := extractUp("-- +migrate Up\nCREATE TABLE t (id INTEGER);\n-- +migrate Down\nDROP TABLE t;\n")
		So(up, ShouldContainSubstring, "CREATE TABLE t")
		So(up, ShouldNotContainSubstring, "DROP TABLE")
	})

	Convey("Given plain SQL", t, func() {
		So(extractUp("SELECT 1;"), ShouldEqual, "SELECT 1;")
	})
}
