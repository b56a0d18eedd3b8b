package sandbox

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/echoface/admob-adapter/internal/mediation"
)

// AdapterHandler exposes the adapter-wide operations.
type AdapterHandler struct {
	appCtx *SandboxContext
}

func NewAdapterHandler(appCtx *SandboxContext) *AdapterHandler {
	return &AdapterHandler{appCtx: appCtx}
}

type consentsBody struct {
	Consents map[mediation.ConsentKey]mediation.ConsentValue `json:"consents"`
	Modified []mediation.ConsentKey                          `json:"modified"`
}

type underageBody struct {
	Underage *bool `json:"underage" binding:"required"`
}

type testDevicesBody struct {
	IDs []string `json:"ids"`
}

// errorBody renders err, adding the mediation code when there is one.
func errorBody(err error) gin.H {
	body := gin.H{"error": err.Error()}
	if code, ok := mediation.CodeOf(err); ok {
		body["code"] = code.String()
	}
	return body
}

// await waits for done, bounded by timeout and the request context.
func await(ctx context.Context, done <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return context.DeadlineExceeded
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetUp POST /adapter/setup
func (h *AdapterHandler) SetUp(c *gin.Context) {
	details, err := h.appCtx.SetUpAdapter(c.Request.Context())
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "set-up still pending"})
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, errorBody(err))
	default:
		c.JSON(http.StatusOK, gin.H{
			"partner": h.appCtx.Adapter.PartnerInfo(),
			"details": details,
		})
	}
}

// BidderInfo GET /adapter/bidder-info?placement=&format=
func (h *AdapterHandler) BidderInfo(c *gin.Context) {
	request := mediation.PreBidRequest{
		MediationPlacement: c.Query("placement"),
		Format:             mediation.AdFormat(c.Query("format")),
		LoadID:             c.Query("load_id"),
	}

	var (
		info    map[string]string
		infoErr error
	)
	done := make(chan struct{})
	h.appCtx.Adapter.FetchBidderInformation(request, func(m map[string]string, err error) {
		info, infoErr = m, err
		close(done)
	})
	if err := await(c.Request.Context(), done, h.appCtx.Config.Adapter.LoadTimeout); err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "bidder information still pending"})
		return
	}
	if infoErr != nil {
		c.JSON(http.StatusBadGateway, errorBody(infoErr))
		return
	}
	c.JSON(http.StatusOK, gin.H{"bidder_information": info})
}

// SetConsents PUT /adapter/consents. Without "modified" every given key is
// treated as modified.
func (h *AdapterHandler) SetConsents(c *gin.Context) {
	var body consentsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	modified := body.Modified
	if modified == nil {
		for key := range body.Consents {
			modified = append(modified, key)
		}
	}
	h.appCtx.Adapter.SetConsents(body.Consents, modified)
	c.JSON(http.StatusOK, gin.H{"modified": modified})
}

// SetUnderage PUT /adapter/underage
func (h *AdapterHandler) SetUnderage(c *gin.Context) {
	var body underageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.appCtx.Adapter.SetIsUserUnderage(*body.Underage)
	c.JSON(http.StatusOK, gin.H{"underage": *body.Underage})
}

// SetTestDevices PUT /adapter/test-devices
func (h *AdapterHandler) SetTestDevices(c *gin.Context) {
	var body testDevicesBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.appCtx.Adapter.SetTestDeviceIdentifiers(body.IDs)
	c.JSON(http.StatusOK, gin.H{"ids": h.appCtx.SDK.TestDeviceIdentifiers()})
}
