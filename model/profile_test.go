package model

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerateReferralCode(t *testing.T) {
	Convey("Given the referral code generator", t, func() {
		Convey("Codes should have the requested length and stay inside the alphabet", func() {
			for i := 0; i < 50; i++ {
				code := GenerateReferralCode(7)
				So(len(code), ShouldEqual, 7)
				for _, r := range code {
					So(strings.ContainsRune(ReferralCodeAlphabet, r), ShouldBeTrue)
				}
			}
		})
	})
}

func TestRoleList(t *testing.T) {
	Convey("Given a list of roles", t, func() {
		roles := RoleList{RoleProvider, RoleAgent}
		Convey("It should round trip through its column representation", func() {
			value, err := roles.Value()
			So(err, ShouldBeNil)
			So(value, ShouldEqual, "provider,agent")

			var scanned RoleList
			So(scanned.Scan("provider,agent"), ShouldBeNil)
			So(scanned.Has(RoleProvider), ShouldBeTrue)
			So(scanned.Has(RoleAgent), ShouldBeTrue)
			So(scanned.Has(RoleConsumer), ShouldBeFalse)
		})
		Convey("An empty column should scan to an empty list", func() {
			var scanned RoleList
			So(scanned.Scan(""), ShouldBeNil)
			So(len(scanned), ShouldEqual, 0)
		})
	})
}

func TestProfileAnonymize(t *testing.T) {
	Convey("Given a referred profile", t, func() {
		referrer := uint64(42)
		profile := NewProfile("signup-1", "jo@example.com", "Jo", RoleList{RoleConsumer}, 7)
		profile.ReferredByProfileID = &referrer
		Convey("Anonymizing should scrub PII but keep the referral linkage", func() {
			profile.Anonymize()
			So(profile.Email, ShouldEqual, "")
			So(profile.DisplayName, ShouldEqual, "")
			So(profile.Status, ShouldEqual, ProfileStatusDeleted)
			So(profile.ReferredByProfileID, ShouldNotBeNil)
			So(*profile.ReferredByProfileID, ShouldEqual, referrer)
			So(profile.ReferralCode, ShouldNotEqual, "")
		})
	})
}
