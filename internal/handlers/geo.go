package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/applicant-tracker/internal/classifier"
)

// Headers set by the CDN in front of the public site.
const (
	headerCity      = "CF-IPCity"
	headerRegion    = "CF-Region"
	headerCountry   = "CF-IPCountry"
	headerLatitude  = "CF-IPLatitude"
	headerLongitude = "CF-IPLongitude"
)

// GeoFromRequest captures where a submission came from.
func GeoFromRequest(c *gin.Context) *classifier.GeoMetadata {
	return &classifier.GeoMetadata{
		IP:        c.ClientIP(),
		City:      strings.TrimSpace(c.GetHeader(headerCity)),
		State:     strings.TrimSpace(c.GetHeader(headerRegion)),
		Country:   strings.TrimSpace(c.GetHeader(headerCountry)),
		Latitude:  headerFloat(c, headerLatitude),
		Longitude: headerFloat(c, headerLongitude),
	}
}

func headerFloat(c *gin.Context, name string) *float64 {
	raw := strings.TrimSpace(c.GetHeader(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
