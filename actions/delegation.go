package actions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
	"gitlab.com/agentlink-marketplace/attribution_api/service"
)

// SetDelegation godoc
// swagger:route PUT /listings/{listing_id}/delegation delegation set_delegation
// Create or update the commission delegation for a listing
func (actions *Actions) SetDelegation(c *gin.Context) {
	listingID, ok := getParamAsUint64(c, "listing_id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid listing id")
		return
	}
	request := model.SetDelegationRequest{}
	if err := c.ShouldBind(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid delegation payload")
		return
	}
	request.ListingID = listingID

	cfg, err := actions.service.SetDelegation(&request)
	if err != nil {
		if errors.Is(err, service.ErrSelfDelegationRejected) {
			abortWithError(c, http.StatusUnprocessableEntity, "A provider cannot delegate commission to themselves")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Unable to store delegation")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetDelegation godoc
// swagger:route GET /listings/{listing_id}/delegation delegation get_delegation
// Return the delegation configured for a listing, if any
func (actions *Actions) GetDelegation(c *gin.Context) {
	listingID, ok := getParamAsUint64(c, "listing_id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid listing id")
		return
	}
	repo := actions.service.GetRepo()
	cfg, err := repo.GetDelegationByListing(repo.ConnReader, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortWithError(c, http.StatusNotFound, "No delegation configured")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Unable to load delegation")
		return
	}
	c.JSON(http.StatusOK, cfg)
}
