package service

import (
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestReferralToken(t *testing.T) {
	secret := "unit-test-secret"
	maxAge := 30 * 24 * time.Hour
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	Convey("A minted token verifies and yields the agent code", t, func() {
		token, err := MintReferralToken("Ab3xK9q", secret, now)
		So(err, ShouldBeNil)
		code, err := VerifyReferralToken(token, secret, maxAge, now.Add(time.Hour))
		So(err, ShouldBeNil)
		So(code, ShouldEqual, "Ab3xK9q")
	})
	Convey("A single flipped byte in the payload is rejected", t, func() {
		token, err := MintReferralToken("Ab3xK9q", secret, now)
		So(err, ShouldBeNil)
		raw := []byte(token)
		raw[2] ^= 0x01
		_, err = VerifyReferralToken(string(raw), secret, maxAge, now)
		So(err, ShouldEqual, ErrSignatureVerificationFailed)
	})
	Convey("A token signed with a different secret is rejected", t, func() {
		token, err := MintReferralToken("Ab3xK9q", "other-secret", now)
		So(err, ShouldBeNil)
		_, err = VerifyReferralToken(token, secret, maxAge, now)
		So(err, ShouldEqual, ErrSignatureVerificationFailed)
	})
	Convey("A well signed token older than the window reads as expired", t, func() {
		token, err := MintReferralToken("Ab3xK9q", secret, now)
		So(err, ShouldBeNil)
		_, err = VerifyReferralToken(token, secret, maxAge, now.Add(31*24*time.Hour))
		So(err, ShouldEqual, ErrTokenExpired)
		_, err = VerifyReferralToken(token, secret, maxAge, now.Add(29*24*time.Hour))
		So(err, ShouldBeNil)
	})
	Convey("Malformed tokens fail closed", t, func() {
		for _, token := range []string{"", "justonepart", "a.b.c", "!!notbase64!!.abcd", "QWJj.nothex"} {
			_, err := VerifyReferralToken(token, secret, maxAge, now)
			So(err, ShouldEqual, ErrSignatureVerificationFailed)
		}
	})
	Convey("An empty verification secret rejects everything", t, func() {
		token, err := MintReferralToken("Ab3xK9q", secret, now)
		So(err, ShouldBeNil)
		_, err = VerifyReferralToken(token, "", maxAge, now)
		So(err, ShouldEqual, ErrSignatureVerificationFailed)
	})
	Convey("The token format is payload dot signature", t, func() {
		token, err := MintReferralToken("Ab3xK9q", secret, now)
		So(err, ShouldBeNil)
		So(strings.Count(token, "."), ShouldEqual, 1)
	})
}
