package actions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/agentlink-marketplace/attribution_api/service"
)

// TrackReferralClick godoc
// swagger:route GET /r/{code} referrals track_click
// Record a referral link visit and hand back the signed attribution cookie
func (actions *Actions) TrackReferralClick(c *gin.Context) {
	code := c.Param("code")
	source := getIPFromRequest(c.GetHeader("X-Forwarded-For"))
	if source == "" {
		source = c.ClientIP()
	}

	token, flagged, err := actions.service.TrackReferralClick(code, source)
	if err != nil {
		if errors.Is(err, service.ErrUnresolvableCode) {
			abortWithError(c, http.StatusNotFound, "Unknown referral code")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Unable to track referral")
		return
	}

	maxAge := actions.cfg.Attribution.CookieMaxAgeDays * 24 * 60 * 60
	c.SetCookie("referral_token", token, maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, map[string]interface{}{
		"referral_token": token,
		"flagged":        flagged,
	})
}

// GetReferralAttempts godoc
// swagger:route GET /agents/{agent_id}/referrals referrals get_referral_attempts
// List an agent's referral attempts, newest first
func (actions *Actions) GetReferralAttempts(c *gin.Context) {
	agentID, ok := getParamAsUint64(c, "agent_id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid agent id")
		return
	}
	page, limit := getPagination(c)
	attempts, err := actions.service.GetRepo().GetAttemptsByAgent(agentID, limit, page)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to load referral attempts")
		return
	}
	c.JSON(http.StatusOK, attempts)
}

// GetAgentEarnings godoc
// swagger:route GET /agents/{agent_id}/earnings referrals get_agent_earnings
// Total commission earned by an agent across the ledger
func (actions *Actions) GetAgentEarnings(c *gin.Context) {
	agentID, ok := getParamAsUint64(c, "agent_id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid agent id")
		return
	}
	total, err := actions.service.GetRepo().GetAgentEarningsTotal(agentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to load earnings")
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{"total": total})
}

// GetTopAgents godoc
// swagger:route GET /agents/top referrals get_top_agents
// Leaderboard of agents by converted referrals
func (actions *Actions) GetTopAgents(c *gin.Context) {
	limit := getQueryAsInt(c, "limit", 10)
	agents, err := actions.service.GetRepo().GetTopAgents(limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to load top agents")
		return
	}
	c.JSON(http.StatusOK, agents)
}
