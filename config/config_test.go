package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/streamer459/streamingdev-sub000/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("membership.debounce")
			So(result, ShouldEqual, "membership_debounce")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Field", t, func() {
		Convey("Env() is prefixed and uppercased", func() {
			field := Default["poll.interval"]
			So(field.Env(), ShouldEqual, "STREAMWATCH_POLL_INTERVAL")
		})

		Convey("Every registered field has a description", func() {
			for _, field := range Default {
				So(field.Description, ShouldNotBeEmpty)
			}
		})
	})
}
