package httpapi

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/xtding233/idle-venues/internal/engine"
	"github.com/xtding233/idle-venues/internal/gacha"
	"github.com/xtding233/idle-venues/internal/state"
	"github.com/xtding233/idle-venues/internal/upgrade"
)

type characterRequest struct {
	CharacterID string `json:"character_id" binding:"required"`
}

type summonRequest struct {
	Tier  int `json:"tier"`
	Count int `json:"count" binding:"omitempty,min=1"`
}

type summonResponse struct {
	Results []gacha.Outcome `json:"results"`

	// Stopped is set when a multi-summon ended early; earlier results stand.
	Stopped *ErrorResponse `json:"stopped,omitempty"`
}

type ackRequest struct {
	Level int `json:"level" binding:"required,min=1"`
}

type stateResponse struct {
	*state.GameState
	Balance         float64 `json:"balance"`
	PendingLevelUps []int   `json:"pending_level_ups"`
}

func (h *Handler) postTick(c *gin.Context) {
	res, err := h.eng.Tick(h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) postSummon(c *gin.Context) {
	var req summonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count > MaxSummonsPerRequest {
		badRequest(c, "count must be at most "+strconv.Itoa(MaxSummonsPerRequest))
		return
	}
	resp := summonResponse{Results: make([]gacha.Outcome, 0, req.Count)}
	for i := 0; i < req.Count; i++ {
		out, err := h.eng.Summon(req.Tier)
		if err != nil {
			if i == 0 {
				writeError(c, err)
				return
			}
			resp.Stopped = &ErrorResponse{Code: engine.ErrorCode(err), Message: err.Error()}
			break
		}
		resp.Results = append(resp.Results, out)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) bindCharacter(c *gin.Context) (string, bool) {
	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return req.CharacterID, true
}

func (h *Handler) postAssign(c *gin.Context) {
	id, ok := h.bindCharacter(c)
	if !ok {
		return
	}
	venueID, err := h.eng.Assign(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"character_id": id, "venue_id": venueID})
}

func (h *Handler) postUnassign(c *gin.Context) {
	id, ok := h.bindCharacter(c)
	if !ok {
		return
	}
	if err := h.eng.Unassign(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) postUpgrade(c *gin.Context) {
	id, ok := h.bindCharacter(c)
	if !ok {
		return
	}
	if err := h.eng.Upgrade(id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.eng.Snapshot().Record(id))
}

func (h *Handler) postDuplicate(c *gin.Context) {
	id, ok := h.bindCharacter(c)
	if !ok {
		return
	}
	out, err := h.eng.AddDuplicate(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) postAck(c *gin.Context) {
	var req ackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.eng.AcknowledgeLevel(req.Level); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_level_ups": nonNil(h.eng.PendingLevelUps())})
}

func (h *Handler) getState(c *gin.Context) {
	s := h.eng.Snapshot()
	c.JSON(http.StatusOK, stateResponse{
		GameState:       s,
		Balance:         s.Balance(),
		PendingLevelUps: nonNil(s.PendingLevelUps()),
	})
}

func (h *Handler) getProgress(c *gin.Context) {
	c.JSON(http.StatusOK, h.eng.Progress())
}

func (h *Handler) getVenueRevenue(c *gin.Context) {
	b, err := h.eng.VenueRevenue(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) getRevenue(c *gin.Context) {
	r, err := h.eng.TotalRevenue()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) getSynergies(c *gin.Context) {
	rules := h.eng.ActiveSynergies()
	c.JSON(http.StatusOK, gin.H{"synergies": rules, "bonus": upgrade.BonusMultiplier(rules)})
}

func (h *Handler) getSimulate(c *gin.Context) {
	tier, err := strconv.Atoi(c.DefaultQuery("tier", "1"))
	if err != nil {
		badRequest(c, "invalid tier")
		return
	}
	trials, err := strconv.Atoi(c.DefaultQuery("trials", "1000"))
	if err != nil || trials < 1 || trials > 100_000 {
		badRequest(c, "trials must be 1..100000")
		return
	}
	goal := gacha.TrialGoal(c.DefaultQuery("goal", string(gacha.GoalMaxAll)))
	var budget *gacha.SimBudget
	if goal == gacha.GoalFixedBudget {
		n, err := strconv.Atoi(c.Query("summons"))
		if err != nil || n < 1 {
			badRequest(c, "fixed_budget needs summons >= 1")
			return
		}
		budget = &gacha.SimBudget{NumSummons: n}
	}
	st, err := h.eng.Simulate(tier, goal, trials, budget)
	if err != nil {
		if errors.Is(err, gacha.ErrInvalidSim) {
			badRequest(c, err.Error())
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": tier, "goal": goal, "trials": trials, "stats": st})
}

func nonNil(xs []int) []int {
	if xs == nil {
		return []int{}
	}
	return xs
}
