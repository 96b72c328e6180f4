package entity

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAlertState_CanAdvance(t *testing.T) {
	Convey("TestAlertState_CanAdvance", t, func() {
		Convey("生命周期只进不退", func() {
			So(AlertStateActive.CanAdvance(AlertStateAcknowledged), ShouldBeTrue)
			So(AlertStateActive.CanAdvance(AlertStateResolved), ShouldBeTrue)
			So(AlertStateAcknowledged.CanAdvance(AlertStateResolved), ShouldBeTrue)

			So(AlertStateAcknowledged.CanAdvance(AlertStateActive), ShouldBeFalse)
			So(AlertStateResolved.CanAdvance(AlertStateAcknowledged), ShouldBeFalse)
			So(AlertStateActive.CanAdvance(AlertStateActive), ShouldBeFalse)
		})

		Convey("未知状态不参与推进", func() {
			So(AlertStateActive.CanAdvance(AlertState("closed")), ShouldBeFalse)
			So(AlertState("closed").CanAdvance(AlertStateResolved), ShouldBeFalse)
		})
	})
}
