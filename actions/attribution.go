package actions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
	"gitlab.com/agentlink-marketplace/attribution_api/service"
)

// Signup godoc
// swagger:route POST /signups attribution signup
// Register a profile and bind its referrer from the supplied signals
func (actions *Actions) Signup(c *gin.Context) {
	request := model.SignupRequest{}
	if err := c.ShouldBind(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid signup payload")
		return
	}
	if request.SourceIdentifier == "" {
		request.SourceIdentifier = getIPFromRequest(c.GetHeader("X-Forwarded-For"))
	}

	result, err := actions.service.ResolveAndBindAttribution(&request)
	if err != nil {
		if errors.Is(err, service.ErrCodeGenerationExhausted) {
			abortWithError(c, http.StatusConflict, "Unable to allocate a referral code")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Unable to register profile")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// RebindReferrer godoc
// swagger:route PUT /profiles/{profile_id}/referrer attribution rebind_referrer
// Attempting to change a bound referrer is always rejected
func (actions *Actions) RebindReferrer(c *gin.Context) {
	profileID, ok := getParamAsUint64(c, "profile_id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid profile id")
		return
	}
	referrerID, ok := getQueryAsUint64(c, "referrer_id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid referrer id")
		return
	}
	if err := actions.service.RebindAttribution(profileID, referrerID); err != nil {
		abortWithError(c, http.StatusConflict, "Referrer binding is immutable")
		return
	}
	c.JSON(http.StatusOK, "OK")
}

// AnonymizeProfile godoc
// swagger:route DELETE /profiles/{profile_id} attribution anonymize_profile
// Scrub a profile's personal data while keeping its referral linkage
func (actions *Actions) AnonymizeProfile(c *gin.Context) {
	profileID, ok := getParamAsUint64(c, "profile_id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid profile id")
		return
	}
	if err := actions.service.AnonymizeProfile(profileID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to anonymize profile")
		return
	}
	c.JSON(http.StatusOK, "OK")
}
