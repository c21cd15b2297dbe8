package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type TreeHandler struct{}

func NewTreeHandler() *TreeHandler {
	return &TreeHandler{}
}

var speciesBlurbs = map[string]string{
	"cherry":   "Ornamental cherries line many Vancouver streets and bloom in early spring.",
	"dogwood":  "The Pacific dogwood is the floral emblem of British Columbia.",
	"katsura":  "Katsura leaves smell faintly of burnt sugar when they fall.",
	"magnolia": "Street magnolias flower before their leaves emerge.",
}

// Describe returns a short blurb for a tree species.
func (h *TreeHandler) Describe(c *gin.Context) {
	species := strings.ToLower(c.Param("species"))
	slog.Info("tree description requested", "species", species)

	blurb, ok := speciesBlurbs[species]
	if !ok {
		blurb = "This is a tree blurb with info."
	}

	c.JSON(http.StatusOK, gin.H{"blurb": blurb})
}
