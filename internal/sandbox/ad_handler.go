package sandbox

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/echoface/admob-adapter/internal/admob"
	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk/simulated"
)

// AdHandler drives ad instances the way the mediation framework does.
type AdHandler struct {
	appCtx *SandboxContext
}

func NewAdHandler(appCtx *SandboxContext) *AdHandler {
	return &AdHandler{appCtx: appCtx}
}

type loadAdBody struct {
	Format             mediation.AdFormat    `json:"format" binding:"required"`
	MediationPlacement string                `json:"mediation_placement"`
	PartnerPlacement   string                `json:"partner_placement"`
	BannerSize         *mediation.BannerSize `json:"banner_size"`
	PartnerSettings    map[string]any        `json:"partner_settings"`
	// WithoutViewController loads with no presentation context.
	WithoutViewController bool `json:"without_view_controller"`
}

type showAdBody struct {
	WithoutViewController bool `json:"without_view_controller"`
}

func (h *AdHandler) viewController(without bool) mediation.ViewController {
	if without {
		return nil
	}
	return h.appCtx.RootViewController
}

// Load POST /ads
// 201 loaded, 502 load failed, 504 still pending (the ad stays registered).
func (h *AdHandler) Load(c *gin.Context) {
	var body loadAdBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request := mediation.AdLoadRequest{
		PartnerID:          admob.PartnerID,
		MediationPlacement: body.MediationPlacement,
		PartnerPlacement:   body.PartnerPlacement,
		Format:             body.Format,
		BannerSize:         body.BannerSize,
		PartnerSettings:    body.PartnerSettings,
		Identifier:         uuid.NewString(),
		LoadID:             uuid.NewString(),
	}
	if request.MediationPlacement == "" {
		request.MediationPlacement = request.PartnerPlacement
	}

	entry := newAdEntry(uuid.NewString(), request)
	entry.delegate = h.appCtx.Delegates.Register(entry.journal)

	var (
		ad  mediation.PartnerAd
		err error
	)
	if request.Format.IsBanner() {
		ad, err = h.appCtx.Adapter.MakeBannerAd(request, entry.delegate)
	} else {
		ad, err = h.appCtx.Adapter.MakeFullscreenAd(request, entry.delegate)
	}
	if err != nil {
		h.appCtx.Delegates.Release(entry.delegate)
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	entry.ad = ad
	h.appCtx.Ads.put(entry)

	h.appCtx.Logger.Info("ad load requested",
		"ad_id", entry.id, "load_id", request.LoadID, "format", request.Format, "placement", request.PartnerPlacement)
	ad.Load(h.viewController(body.WithoutViewController), entry.loadCompleted)

	if err := await(c.Request.Context(), entry.loaded, h.appCtx.Config.Adapter.LoadTimeout); err != nil {
		c.JSON(http.StatusGatewayTimeout, entry.view())
		return
	}
	view := entry.view()
	if view.Status == AdStatusLoadFailed {
		c.JSON(http.StatusBadGateway, view)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Show POST /ads/:id/show
func (h *AdHandler) Show(c *gin.Context) {
	entry, ok := h.appCtx.Ads.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "ad not found"})
		return
	}
	fullscreen, ok := entry.ad.(mediation.PartnerFullscreenAd)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "banner ads are shown inline"})
		return
	}

	var body showAdBody
	// the body is optional
	_ = c.ShouldBindJSON(&body)

	shown, ok := entry.beginShow()
	if !ok {
		c.JSON(http.StatusConflict, entry.view())
		return
	}
	fullscreen.Show(h.viewController(body.WithoutViewController), entry.showCompleted)

	if err := await(c.Request.Context(), shown, h.appCtx.Config.Adapter.LoadTimeout); err != nil {
		c.JSON(http.StatusGatewayTimeout, entry.view())
		return
	}
	view := entry.view()
	if view.Status == AdStatusShowFailed {
		c.JSON(http.StatusBadGateway, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Get GET /ads/:id
func (h *AdHandler) Get(c *gin.Context) {
	entry, ok := h.appCtx.Ads.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "ad not found"})
		return
	}
	// let queued partner callbacks land first
	_ = h.appCtx.MainQueue.Flush(c.Request.Context())
	c.JSON(http.StatusOK, entry.view())
}

// Invalidate DELETE /ads/:id
func (h *AdHandler) Invalidate(c *gin.Context) {
	entry, ok := h.appCtx.Ads.remove(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "ad not found"})
		return
	}
	h.appCtx.invalidate(entry)
	c.JSON(http.StatusOK, entry.view())
}

// TriggerPartnerEvent POST /partner/placements/:placement/:event
func (h *AdHandler) TriggerPartnerEvent(c *gin.Context) {
	event, err := simulated.ParseEvent(c.Param("event"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	placement := c.Param("placement")
	n, err := h.appCtx.SDK.Trigger(placement, event)
	if errors.Is(err, simulated.ErrNoLiveAd) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "placement": placement})
		return
	}
	_ = h.appCtx.MainQueue.Flush(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"placement": placement, "event": event, "ads": n})
}
